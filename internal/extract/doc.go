package extract

import "strings"

// scanDocComments maps a 1-based declaration line to the block comment
// whose last line sits directly above it. One pass over the file, tracking
// comment block boundaries.
func scanDocComments(content []byte) map[int]string {
	docs := make(map[int]string)
	lines := strings.Split(string(content), "\n")

	inBlock := false
	var block []string
	for i, raw := range lines {
		line := strings.TrimSpace(raw)

		if !inBlock {
			start := strings.Index(line, "/*")
			if start < 0 {
				continue
			}
			rest := line[start+2:]
			if end := strings.Index(rest, "*/"); end >= 0 {
				// single-line block comment
				docs[i+2] = cleanDoc([]string{rest[:end]})
				continue
			}
			inBlock = true
			block = []string{rest}
			continue
		}

		if end := strings.Index(line, "*/"); end >= 0 {
			block = append(block, line[:end])
			docs[i+2] = cleanDoc(block)
			inBlock = false
			block = nil
			continue
		}
		block = append(block, line)
	}
	return docs
}

// ModuleDoc returns the file's leading block comment: the first block
// comment appearing before any other content, or "".
func ModuleDoc(content []byte) string {
	s := strings.TrimLeft(string(content), " \t\r\n")
	if !strings.HasPrefix(s, "/*") {
		return ""
	}
	end := strings.Index(s, "*/")
	if end < 0 {
		return ""
	}
	return cleanDoc(strings.Split(s[2:end], "\n"))
}

// cleanDoc strips JSDoc dressing: leading asterisks and surrounding
// whitespace per line, blank edges overall.
func cleanDoc(lines []string) string {
	var out []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "*")
		l = strings.TrimSpace(l)
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
