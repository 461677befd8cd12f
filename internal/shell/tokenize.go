package shell

import "strings"

// Tokenize splits an input line into a command and its parameters.
//
// When the line contains a single quote, single quotes delimit parameters; a
// line without single quotes falls back to double quotes, and a line with
// neither splits on whitespace. Quoted segments are kept whole so paths may
// contain spaces. Empty quoted segments are dropped unless they would be the
// first token, which the caller treats as no input.
func Tokenize(line string) []string {
	delim := quoteOf(line)
	if delim == "" {
		return strings.Fields(line)
	}

	var tokens []string
	for i, part := range strings.Split(line, delim) {
		if i%2 == 0 {
			tokens = append(tokens, strings.Fields(part)...)
			continue
		}
		tok := strings.TrimSpace(part)
		if tok == "" && len(tokens) > 0 {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func quoteOf(line string) string {
	switch {
	case strings.Contains(line, "'"):
		return "'"
	case strings.Contains(line, `"`):
		return `"`
	default:
		return ""
	}
}
