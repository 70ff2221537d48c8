package inject

import "strings"

var escaper = strings.NewReplacer(`"`, `'`, "\n", `\n`)

// Escape prepares shader source for a single-line double-quoted literal.
// Double quotes become single quotes and line feeds become \n; everything
// else, backslashes included, is copied as is.
func Escape(src string) string {
	return escaper.Replace(src)
}
