// Package flatten inlines local "#include" directives so that a tree of
// header files becomes one standalone file.
package flatten

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/xopoww/glugen/fsx"
)

var (
	includeRe         = regexp.MustCompile(`(?m)^#include[ \t]+"([^"\r\n]+)"`)
	indentedIncludeRe = regexp.MustCompile(`(?m)^[ \t]*#include[ \t]+"([^"\r\n]+)"`)
)

type Options struct {
	// AllowIndent also matches directives preceded by spaces or tabs.
	// The indentation is part of the replaced span.
	AllowIndent bool

	Logger *zap.Logger
}

type Flattener struct {
	re  *regexp.Regexp
	log *zap.Logger
}

func New(opts Options) *Flattener {
	f := &Flattener{re: includeRe, log: opts.Logger}
	if opts.AllowIndent {
		f.re = indentedIncludeRe
	}
	if f.log == nil {
		f.log = zap.NewNop()
	}
	return f
}

// Flatten returns the content of path with every include directive replaced
// by the flattened content of the referenced file followed by a newline.
// Files included more than once are inlined every time.
func (f *Flattener) Flatten(path string) (string, error) {
	return f.flatten(path, nil)
}

// FlattenFile flattens inPath and writes the result to outPath.
// Nothing is written if flattening fails.
func (f *Flattener) FlattenFile(inPath, outPath string) error {
	code, err := f.Flatten(inPath)
	if err != nil {
		return err
	}
	return fsx.WriteFile(outPath, []byte(code), 0o644)
}

// Directives reports whether src still contains an include directive.
func (f *Flattener) Directives(src string) bool {
	return f.re.MatchString(src)
}

func (f *Flattener) flatten(path string, chain []string) (string, error) {
	key := canonicalPath(path)
	for _, p := range chain {
		if p == key {
			cycle := append(append([]string(nil), chain...), key)
			return "", &CycleError{Chain: cycle}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", path, err)
	}
	chain = append(chain, key)

	src := string(data)
	dir := filepath.Dir(path)

	// The text after a replaced directive starts on a fresh line, so resuming
	// the scan there finds the same matches as rescanning the whole buffer.
	var out strings.Builder
	rest := src
	for {
		loc := f.re.FindStringSubmatchIndex(rest)
		if loc == nil {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:loc[0]])

		target := rest[loc[2]:loc[3]]
		if !filepath.IsAbs(target) {
			target = filepath.Join(dir, target)
		}
		f.log.Debug("resolving include",
			zap.String("file", path),
			zap.String("include", target),
			zap.Int("depth", len(chain)))

		included, err := f.flatten(target, chain)
		if err != nil {
			line := strings.Count(src[:len(src)-len(rest)+loc[0]], "\n") + 1
			return "", fmt.Errorf("%s:%d: %w", path, line, err)
		}
		out.WriteString(included)
		out.WriteByte('\n')

		rest = rest[loc[1]:]
	}
	return out.String(), nil
}

func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// Flatten flattens path with default options.
func Flatten(path string) (string, error) {
	return New(Options{}).Flatten(path)
}

// FlattenFile flattens inPath into outPath with default options.
func FlattenFile(inPath, outPath string) error {
	return New(Options{}).FlattenFile(inPath, outPath)
}
