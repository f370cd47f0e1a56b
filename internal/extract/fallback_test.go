package extract

import (
	"testing"

	"github.com/karowan/codemodel/internal/model"
)

func TestFallbackImports(t *testing.T) {
	t.Parallel()

	source := `import App from './app.js';
import { render, hydrate as wet } from 'react-dom';
import * as fs from 'fs';
import 'polyfill';
const path = require('path');
const { join } = require('path');
`
	rec := Fallback([]byte(source), "test reason")
	if rec.Strategy != model.StrategyRegex || rec.ParseError != "test reason" {
		t.Fatalf("strategy/parseError: %q %q", rec.Strategy, rec.ParseError)
	}
	if len(rec.Imports) != 6 {
		t.Fatalf("expected 6 imports, got %d: %+v", len(rec.Imports), rec.Imports)
	}

	if rec.Imports[0].Source != "./app.js" || rec.Imports[0].Specifiers[0] != "App" {
		t.Errorf("default: %+v", rec.Imports[0])
	}
	if got := rec.Imports[1].Specifiers; len(got) != 2 || got[0] != "render" || got[1] != "wet" {
		t.Errorf("named: %v", got)
	}
	if got := rec.Imports[2].Specifiers; len(got) != 1 || got[0] != "fs" {
		t.Errorf("namespace: %v", got)
	}
	if rec.Imports[3].Source != "polyfill" {
		t.Errorf("bare: %+v", rec.Imports[3])
	}
	if rec.Imports[4].Specifiers[0] != "path" {
		t.Errorf("require: %+v", rec.Imports[4])
	}
	if rec.Imports[5].Specifiers[0] != "join" {
		t.Errorf("destructured require: %+v", rec.Imports[5])
	}
}

func TestFallbackFunctionsAndClasses(t *testing.T) {
	t.Parallel()

	source := `async function fetchUsers(url, opts) {}
const toUpper = (s) => s.toUpperCase();
class UserStore extends EventEmitter {}
`
	rec := Fallback([]byte(source), "r")

	if len(rec.FunctionDetails) != 2 {
		t.Fatalf("functions: %+v", rec.FunctionDetails)
	}
	f := rec.FunctionDetails[0]
	if f.Name != "fetchUsers" || !f.IsAsync || f.StartLine != 1 {
		t.Errorf("fetchUsers: %+v", f)
	}
	if len(f.Params) != 2 || f.Params[0] != "url" || f.Params[1] != "opts" {
		t.Errorf("params: %v", f.Params)
	}
	if rec.FunctionDetails[1].Name != "toUpper" || rec.FunctionDetails[1].StartLine != 2 {
		t.Errorf("toUpper: %+v", rec.FunctionDetails[1])
	}

	if len(rec.ClassDetails) != 1 {
		t.Fatalf("classes: %+v", rec.ClassDetails)
	}
	c := rec.ClassDetails[0]
	if c.Name != "UserStore" || c.Superclass != "EventEmitter" || c.StartLine != 3 {
		t.Errorf("UserStore: %+v", c)
	}
}

func TestFallbackExports(t *testing.T) {
	t.Parallel()

	source := `export function go() {}
export const level = 3;
export { one, two as alias };
module.exports = { main, helper: doHelp };
module.exports.version = '2';
exports.legacy = true;
`
	rec := Fallback([]byte(source), "r")

	want := []string{"go", "level", "one", "alias", "main", "doHelp", "version", "legacy"}
	if len(rec.Exports) != len(want) {
		t.Fatalf("exports = %v, want %v", rec.Exports, want)
	}
	got := make(map[string]bool)
	for _, e := range rec.Exports {
		got[e] = true
	}
	for _, e := range want {
		if !got[e] {
			t.Errorf("missing export %q in %v", e, rec.Exports)
		}
	}
}

func TestFallbackDocComments(t *testing.T) {
	t.Parallel()

	source := `/** Does the thing. */
function thing() {}
`
	rec := Fallback([]byte(source), "r")
	if len(rec.FunctionDetails) != 1 {
		t.Fatalf("functions: %+v", rec.FunctionDetails)
	}
	if rec.FunctionDetails[0].DocComment != "Does the thing." {
		t.Errorf("doc = %q", rec.FunctionDetails[0].DocComment)
	}
}
