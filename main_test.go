package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/xopoww/glugen/app"
	"github.com/xopoww/glugen/config"
	"github.com/xopoww/glugen/inject"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--log-format", "json"}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestMissingArguments(t *testing.T) {
	for _, args := range [][]string{
		{"inject"},
		{"inject", "in.hpp"},
		{"flatten", "in.hpp"},
	} {
		_, err := run(t, args...)
		assert.ErrorIs(t, err, ErrMissingArgument, "%v", args)
	}

	_, err := run(t, "inject", "a", "b", "c")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingArgument)
}

func TestFlattenCmd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "glu", "Reduce.hpp"), "#include \"gl_utils.hpp\"\nreduce\n")
	writeFile(t, filepath.Join(dir, "glu", "gl_utils.hpp"), "    #include \"errors.hpp\"\nutils")
	writeFile(t, filepath.Join(dir, "glu", "errors.hpp"), "errors")
	out := filepath.Join(dir, "dist", "Reduce.hpp")

	_, err := run(t, "flatten", filepath.Join(dir, "glu", "Reduce.hpp"), out)
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "    #include \"errors.hpp\"\nutils\n\nreduce\n", string(data))

	_, err = run(t, "flatten", "--allow-indent", filepath.Join(dir, "glu", "Reduce.hpp"), out)
	require.NoError(t, err)
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "errors\n\nutils\n\nreduce\n", string(data))
}

func TestInjectCmd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "resources", "a.glsl"), "void main(){}")
	writeFile(t, filepath.Join(dir, "in.hpp"), "RGC_SHADER_INJECTOR_LOAD_SRC(s.m_name, \"a.glsl\");\nRGC_SHADER_INJECTOR_INJECTION_POINT\n")
	writeFile(t, filepath.Join(dir, "def.tmpl"), "const char* {{.Symbol}} = R\"({{.Source}})\";\n")
	out := filepath.Join(dir, "out.hpp")

	_, err := run(t, "inject", "--shader-dir", filepath.Join(dir, "resources"),
		"--template", filepath.Join(dir, "def.tmpl"),
		filepath.Join(dir, "in.hpp"), out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Regexp(t, `^__rgc_shader_injector_load_src\(s\.m_name, (\w+)\);\nconst char\* (\w+) = R"\(void main\(\)\{\}\)";\n\n$`, string(data))
}

func TestInjectCmdMissingMarker(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "in.hpp"), "int x;\n")
	out := filepath.Join(dir, "out.hpp")

	_, err := run(t, "inject", filepath.Join(dir, "in.hpp"), out)
	assert.ErrorIs(t, err, inject.ErrMarkerNotFound)
	assert.NoFileExists(t, out)
}

func TestBuildCmd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "include", "Scan.hpp"), "#include \"detail.hpp\"\nscan\n")
	writeFile(t, filepath.Join(dir, "include", "detail.hpp"), "detail")
	writeFile(t, filepath.Join(dir, "glugen.yaml"), `
flatten:
  input_dir: include
  output_dir: out
  headers: [Scan.hpp]
`)

	_, err := run(t, "build", "--config", filepath.Join(dir, "glugen.yaml"))
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "out", "Scan.hpp"))
	require.NoError(t, err)
	assert.Equal(t, "detail\n\nscan\n", string(data))

	_, err = run(t, "build", "--check", "--config", filepath.Join(dir, "glugen.yaml"))
	require.NoError(t, err)

	writeFile(t, filepath.Join(dir, "include", "detail.hpp"), "detail v2")
	diff, err := run(t, "build", "--check", "--config", filepath.Join(dir, "glugen.yaml"))
	assert.ErrorIs(t, err, app.ErrStale)
	assert.Contains(t, diff, "+detail v2\n")
}

func TestBuildCmdMissingConfig(t *testing.T) {
	_, err := run(t, "build", "--config", filepath.Join(t.TempDir(), "glugen.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuildCmdInit(t *testing.T) {
	for _, name := range []string{"glugen.yaml", "glugen.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			_, err := run(t, "build", "--init", "--config", path)
			require.NoError(t, err)

			cfg, err := config.Load(path)
			require.NoError(t, err)
			assert.Equal(t, config.Default().Flatten, cfg.Flatten)
			assert.Equal(t, inject.DefaultMarkerToken, cfg.Inject.MarkerToken)

			_, err = run(t, "build", "--init", "--config", path)
			assert.Error(t, err, "existing manifest must not be overwritten")
		})
	}
}
