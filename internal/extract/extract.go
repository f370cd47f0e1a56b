// Package extract parses one source file into a StructuralRecord using
// tree-sitter, with a regex fallback when the parse fails.
package extract

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/karowan/codemodel/internal/model"
)

// Extract parses content and returns a best-effort StructuralRecord. It
// never fails: when the syntax-tree parse errors out, the regex fallback
// runs instead and the record's Strategy/ParseError say so.
func Extract(content []byte, filePath string) model.StructuralRecord {
	parser := sitter.NewParser()
	parser.SetLanguage(grammarFor(filePath))

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return Fallback(content, "parse failed: "+err.Error())
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return Fallback(content, "syntax errors in "+filepath.Base(filePath))
	}

	w := &walker{source: content, docs: scanDocComments(content)}
	w.walkProgram(root)

	rec := model.StructuralRecord{
		Exports:         w.exports,
		Imports:         w.imports,
		FunctionDetails: dedupFunctions(w.functions),
		ClassDetails:    dedupClasses(w.classes),
		Strategy:        model.StrategyAST,
	}
	for _, f := range rec.FunctionDetails {
		if f.Name != "" {
			rec.Functions = append(rec.Functions, f.Name)
		}
	}
	for _, c := range rec.ClassDetails {
		if c.Name != "" {
			rec.Classes = append(rec.Classes, c.Name)
		}
	}
	return rec
}

// grammarFor picks the richest grammar the extension could contain.
func grammarFor(filePath string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts":
		return typescript.GetLanguage()
	case ".tsx":
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// walker accumulates structural facts from top-level declarations only.
type walker struct {
	source    []byte
	docs      map[int]string
	exports   []string
	exportSet map[string]struct{}
	imports   []model.Import
	functions []model.FunctionDetail
	classes   []model.ClassDetail
}

func (w *walker) walkProgram(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		switch node.Type() {
		case "import_statement":
			w.visitImport(node)
		case "export_statement":
			w.visitExport(node)
		case "class_declaration":
			w.classes = append(w.classes, w.classDetail(node))
		case "function_declaration", "generator_function_declaration":
			w.functions = append(w.functions, w.functionDetail(node, ""))
		case "lexical_declaration", "variable_declaration":
			w.visitVariableDeclaration(node)
		case "expression_statement":
			w.visitExpressionStatement(node)
		}
	}
}

func (w *walker) text(n *sitter.Node) string {
	return n.Content(w.source)
}

func (w *walker) addExport(name string) {
	if name == "" {
		return
	}
	if w.exportSet == nil {
		w.exportSet = make(map[string]struct{})
	}
	if _, dup := w.exportSet[name]; dup {
		return
	}
	w.exportSet[name] = struct{}{}
	w.exports = append(w.exports, name)
}

// visitImport records an import declaration's source and bound names.
func (w *walker) visitImport(node *sitter.Node) {
	srcNode := node.ChildByFieldName("source")
	if srcNode == nil {
		return
	}
	imp := model.Import{Source: stringValue(srcNode, w.source)}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "import_clause" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			clause := child.NamedChild(j)
			switch clause.Type() {
			case "identifier": // default import
				imp.Specifiers = append(imp.Specifiers, w.text(clause))
			case "namespace_import":
				if id := lastNamedChild(clause); id != nil {
					imp.Specifiers = append(imp.Specifiers, w.text(id))
				}
			case "named_imports":
				for k := 0; k < int(clause.NamedChildCount()); k++ {
					spec := clause.NamedChild(k)
					if spec.Type() != "import_specifier" {
						continue
					}
					name := spec.ChildByFieldName("name")
					if alias := spec.ChildByFieldName("alias"); alias != nil {
						name = alias
					}
					if name != nil {
						imp.Specifiers = append(imp.Specifiers, w.text(name))
					}
				}
			}
		}
	}
	w.imports = append(w.imports, imp)
}

// visitExport records exported names; when the exported declaration is a
// class or function its structural detail is recorded as well.
func (w *walker) visitExport(node *sitter.Node) {
	isDefault := false
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "default" {
			isDefault = true
		}
	}

	if decl := node.ChildByFieldName("declaration"); decl != nil {
		switch decl.Type() {
		case "class_declaration":
			cd := w.classDetail(decl)
			w.classes = append(w.classes, cd)
			w.addExport(exportName(cd.Name, isDefault))
		case "function_declaration", "generator_function_declaration":
			fd := w.functionDetail(decl, "")
			w.functions = append(w.functions, fd)
			w.addExport(exportName(fd.Name, isDefault))
		case "lexical_declaration", "variable_declaration":
			for _, name := range w.visitVariableDeclaration(decl) {
				w.addExport(name)
			}
		default:
			// export default <expression>
			if isDefault {
				w.addExport("default")
			}
		}
		return
	}

	// export { a, b as c } [from '...']
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "export_clause" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			spec := child.NamedChild(j)
			if spec.Type() != "export_specifier" {
				continue
			}
			name := spec.ChildByFieldName("name")
			if alias := spec.ChildByFieldName("alias"); alias != nil {
				name = alias
			}
			if name != nil {
				w.addExport(w.text(name))
			}
		}
	}
	if isDefault {
		w.addExport("default")
	}
}

func exportName(declared string, isDefault bool) string {
	if declared != "" {
		return declared
	}
	if isDefault {
		return "default"
	}
	return ""
}

// visitVariableDeclaration handles function-valued initializers and
// require() calls. Returns the declared names for export recording.
func (w *walker) visitVariableDeclaration(node *sitter.Node) []string {
	var names []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		decl := node.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		value := decl.ChildByFieldName("value")
		if nameNode == nil {
			continue
		}
		if nameNode.Type() == "identifier" {
			names = append(names, w.text(nameNode))
		}
		if value == nil {
			continue
		}

		switch value.Type() {
		case "arrow_function", "function", "function_expression",
			"generator_function", "generator_function_expression":
			fd := w.functionDetail(value, w.text(nameNode))
			fd.StartLine = line(decl.StartPoint())
			fd.DocComment = w.docs[fd.StartLine]
			w.functions = append(w.functions, fd)
		case "call_expression":
			if imp, ok := w.requireImport(value, nameNode); ok {
				w.imports = append(w.imports, imp)
			}
		case "member_expression":
			// const log = require('./logger').log
			obj := value.ChildByFieldName("object")
			if obj != nil && obj.Type() == "call_expression" {
				if imp, ok := w.requireImport(obj, nameNode); ok {
					w.imports = append(w.imports, imp)
				}
			}
		}
	}
	return names
}

// requireImport recognizes require('...') calls, binding either a single
// name or a destructuring pattern's names.
func (w *walker) requireImport(call, nameNode *sitter.Node) (model.Import, bool) {
	fn := call.ChildByFieldName("function")
	if fn == nil || w.text(fn) != "require" {
		return model.Import{}, false
	}
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return model.Import{}, false
	}
	arg := args.NamedChild(0)
	if arg.Type() != "string" {
		return model.Import{}, false
	}

	imp := model.Import{Source: stringValue(arg, w.source)}
	switch nameNode.Type() {
	case "identifier":
		imp.Specifiers = []string{w.text(nameNode)}
	case "object_pattern":
		for i := 0; i < int(nameNode.NamedChildCount()); i++ {
			prop := nameNode.NamedChild(i)
			switch prop.Type() {
			case "shorthand_property_identifier_pattern", "shorthand_property_identifier":
				imp.Specifiers = append(imp.Specifiers, w.text(prop))
			case "pair_pattern", "pair":
				if v := prop.ChildByFieldName("value"); v != nil {
					imp.Specifiers = append(imp.Specifiers, w.text(v))
				}
			}
		}
	}
	return imp, true
}

// visitExpressionStatement handles the conventional module-exports object:
// whole-object assignment and property-by-property assignment.
func (w *walker) visitExpressionStatement(node *sitter.Node) {
	expr := node.NamedChild(0)
	if expr == nil || expr.Type() != "assignment_expression" {
		return
	}
	left := expr.ChildByFieldName("left")
	right := expr.ChildByFieldName("right")
	if left == nil || right == nil || left.Type() != "member_expression" {
		return
	}

	leftText := w.text(left)
	switch {
	case leftText == "module.exports" || leftText == "exports":
		if right.Type() == "object" {
			for i := 0; i < int(right.NamedChildCount()); i++ {
				prop := right.NamedChild(i)
				switch prop.Type() {
				case "pair":
					if key := prop.ChildByFieldName("key"); key != nil {
						w.addExport(strings.Trim(w.text(key), `'"`))
					}
				case "shorthand_property_identifier":
					w.addExport(w.text(prop))
				}
			}
		}
	case strings.HasPrefix(leftText, "module.exports.") || strings.HasPrefix(leftText, "exports."):
		if prop := left.ChildByFieldName("property"); prop != nil {
			w.addExport(w.text(prop))
		}
	}
}

// functionDetail builds a FunctionDetail from a function-like node. name
// overrides the node's own name field (variable-declarator case).
func (w *walker) functionDetail(node *sitter.Node, name string) model.FunctionDetail {
	if name == "" {
		if n := node.ChildByFieldName("name"); n != nil {
			name = w.text(n)
		}
	}

	fd := model.FunctionDetail{
		Name:      name,
		IsAsync:   hasToken(node, "async"),
		StartLine: line(node.StartPoint()),
		EndLine:   line(node.EndPoint()),
	}
	fd.DocComment = w.docs[fd.StartLine]

	params := node.ChildByFieldName("parameters")
	if params == nil {
		params = node.ChildByFieldName("parameter") // single-param arrow
	}
	fd.Params = w.paramNames(params)
	return fd
}

func (w *walker) paramNames(params *sitter.Node) []string {
	if params == nil {
		return nil
	}
	if params.Type() == "identifier" {
		return []string{w.text(params)}
	}
	var names []string
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "identifier":
			names = append(names, w.text(p))
		case "assignment_pattern":
			if left := p.ChildByFieldName("left"); left != nil {
				names = append(names, w.text(left))
			}
		case "rest_pattern":
			names = append(names, collapseWhitespace(w.text(p)))
		case "object_pattern", "array_pattern":
			names = append(names, collapseWhitespace(w.text(p)))
		case "required_parameter", "optional_parameter":
			// typescript grammar wraps the pattern
			if pat := p.ChildByFieldName("pattern"); pat != nil {
				names = append(names, collapseWhitespace(w.text(pat)))
			}
		}
	}
	return names
}

func (w *walker) classDetail(node *sitter.Node) model.ClassDetail {
	cd := model.ClassDetail{
		StartLine: line(node.StartPoint()),
		EndLine:   line(node.EndPoint()),
	}
	cd.DocComment = w.docs[cd.StartLine]
	if n := node.ChildByFieldName("name"); n != nil {
		cd.Name = w.text(n)
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "class_heritage" {
			if sup := lastNamedChild(child); sup != nil {
				cd.Superclass = w.text(sup)
			}
		}
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return cd
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member.Type() != "method_definition" {
			continue
		}
		md := w.functionDetail(member, "")
		md.Kind = methodKind(member, md.Name)
		cd.Methods = append(cd.Methods, md)
	}
	cd.Methods = dedupFunctions(cd.Methods)
	return cd
}

func methodKind(node *sitter.Node, name string) string {
	if name == "constructor" {
		return "constructor"
	}
	if hasToken(node, "get") {
		return "get"
	}
	if hasToken(node, "set") {
		return "set"
	}
	return "method"
}

// hasToken reports whether node has an anonymous child token of the given
// type before its name/parameters (async, get, set markers).
func hasToken(node *sitter.Node, token string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if !child.IsNamed() && child.Type() == token {
			return true
		}
	}
	return false
}

func lastNamedChild(node *sitter.Node) *sitter.Node {
	n := int(node.NamedChildCount())
	if n == 0 {
		return nil
	}
	return node.NamedChild(n - 1)
}

func line(p sitter.Point) int {
	return int(p.Row) + 1
}

// stringValue returns a string literal's value without its quotes.
func stringValue(node *sitter.Node, source []byte) string {
	s := node.Content(source)
	if len(s) >= 2 {
		switch s[0] {
		case '\'', '"', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// dedupFunctions drops repeat (name, startLine) entries, keeping first
// occurrence order. A symbol reached via two visitation paths must appear
// once.
func dedupFunctions(fds []model.FunctionDetail) []model.FunctionDetail {
	type key struct {
		name string
		line int
	}
	seen := make(map[key]struct{}, len(fds))
	var out []model.FunctionDetail
	for _, fd := range fds {
		k := key{fd.Name, fd.StartLine}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, fd)
	}
	return out
}

func dedupClasses(cds []model.ClassDetail) []model.ClassDetail {
	type key struct {
		name string
		line int
	}
	seen := make(map[key]struct{}, len(cds))
	var out []model.ClassDetail
	for _, cd := range cds {
		k := key{cd.Name, cd.StartLine}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, cd)
	}
	return out
}
