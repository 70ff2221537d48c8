// Package inject embeds external shader files into C++ sources.
//
// Annotated load calls such as
//
//	RGC_SHADER_INJECTOR_LOAD_SRC(shader.m_name, "resources/sort.comp.glsl");
//
// are rewritten to reference generated string constants, and the constants
// are defined in place of the RGC_SHADER_INJECTOR_INJECTION_POINT marker line.
package inject

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/xopoww/glugen/fsx"
	"github.com/xopoww/glugen/templates"
)

const (
	DefaultLoadToken    = "RGC_SHADER_INJECTOR_LOAD_SRC"
	DefaultLoadFunc     = "__rgc_shader_injector_load_src"
	DefaultMarkerToken  = "RGC_SHADER_INJECTOR_INJECTION_POINT"
	DefaultSymbolPrefix = "__rgc_shader_injector_shader_src_"
)

// Options configures an Injector. Zero values select the defaults.
type Options struct {
	LoadToken    string
	LoadFunc     string
	MarkerToken  string
	SymbolPrefix string

	// ShaderDir is joined to relative shader paths. Empty means the
	// working directory.
	ShaderDir string

	// DefinitionTemplate is a text/template executed once per shader
	// with a Definition. Defaults to templates.Definition.
	DefinitionTemplate string

	// Random feeds symbol generation. Defaults to crypto/rand.
	Random io.Reader

	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.LoadToken == "" {
		o.LoadToken = DefaultLoadToken
	}
	if o.LoadFunc == "" {
		o.LoadFunc = DefaultLoadFunc
	}
	if o.MarkerToken == "" {
		o.MarkerToken = DefaultMarkerToken
	}
	if o.SymbolPrefix == "" {
		o.SymbolPrefix = DefaultSymbolPrefix
	}
	if o.DefinitionTemplate == "" {
		o.DefinitionTemplate = templates.Definition
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Record pairs a generated symbol with the shader file it will hold.
type Record struct {
	Symbol string
	Path   string
}

type Injector struct {
	opts     Options
	loadRe   *regexp.Regexp
	markerRe *regexp.Regexp
	tmpl     *template.Template
	log      *zap.Logger
}

func New(opts Options) (*Injector, error) {
	opts = opts.withDefaults()
	if strings.Contains(opts.LoadFunc, opts.LoadToken) {
		return nil, fmt.Errorf("%w: load function %q contains load token %q",
			ErrInvalidOptions, opts.LoadFunc, opts.LoadToken)
	}

	tmpl, err := parseTemplate("definition", opts.DefinitionTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	return &Injector{
		opts:     opts,
		loadRe:   regexp.MustCompile(regexp.QuoteMeta(opts.LoadToken) + `\(([a-zA-Z0-9_$.]+),\s*"([^"]+)"\)`),
		markerRe: regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(opts.MarkerToken)),
		tmpl:     tmpl,
		log:      opts.Logger,
	}, nil
}

// Rewrite replaces every load call in src with a call to the load function
// taking the same destination and a freshly generated symbol. Records are
// returned in the order calls are rewritten.
//
// The buffer is rescanned from the start after each replacement: a rewritten
// inner call can complete an enclosing call that did not match before.
func (in *Injector) Rewrite(src string) (string, []Record, error) {
	gen := NewSymbolGenerator(in.opts.SymbolPrefix, in.opts.Random)

	var records []Record
	content := src
	for {
		loc := in.loadRe.FindStringSubmatchIndex(content)
		if loc == nil {
			break
		}
		dest := content[loc[2]:loc[3]]
		path := content[loc[4]:loc[5]]

		symbol, err := gen.Next()
		if err != nil {
			return "", nil, err
		}
		records = append(records, Record{Symbol: symbol, Path: in.resolve(path)})
		in.log.Debug("rewrote load call",
			zap.String("destination", dest),
			zap.String("shader", path),
			zap.String("symbol", symbol))

		call := fmt.Sprintf("%s(%s, %s)", in.opts.LoadFunc, dest, symbol)
		content = content[:loc[0]] + call + content[loc[1]:]
	}
	return content, records, nil
}

// Splice replaces the first marker line's marker span, including its
// indentation, with one rendered definition per record. Later marker lines
// are left untouched.
func (in *Injector) Splice(src string, records []Record) (string, error) {
	loc := in.markerRe.FindStringIndex(src)
	if loc == nil {
		return "", fmt.Errorf("%w: no line starts with %s", ErrMarkerNotFound, in.opts.MarkerToken)
	}
	in.log.Debug("found injection marker",
		zap.Int("line", strings.Count(src[:loc[0]], "\n")+1),
		zap.Int("definitions", len(records)))

	defs, err := renderDefinitions(in.tmpl, records)
	if err != nil {
		return "", err
	}
	return src[:loc[0]] + defs + src[loc[1]:], nil
}

// Process reads path and returns it with shaders injected.
func (in *Injector) Process(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", path, err)
	}
	content, records, err := in.Rewrite(string(data))
	if err != nil {
		return "", err
	}
	content, err = in.Splice(content, records)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return content, nil
}

// Inject processes inPath and writes the result to outPath.
// Nothing is written if any step fails.
func (in *Injector) Inject(inPath, outPath string) error {
	content, err := in.Process(inPath)
	if err != nil {
		return err
	}
	return fsx.WriteFile(outPath, []byte(content), 0o644)
}

// SymbolPattern matches symbols generated with the configured prefix.
func (in *Injector) SymbolPattern() *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(in.opts.SymbolPrefix) + `[0-9a-f]{32}`)
}

func (in *Injector) resolve(path string) string {
	if in.opts.ShaderDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(in.opts.ShaderDir, path)
}

// Inject injects shaders from inPath into outPath with default options.
func Inject(inPath, outPath string) error {
	in, err := New(Options{})
	if err != nil {
		return err
	}
	return in.Inject(inPath, outPath)
}
