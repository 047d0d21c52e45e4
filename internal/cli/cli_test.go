package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/fealgraph/pkg/dag"
	"github.com/matzehuels/fealgraph/pkg/feal"
	fio "github.com/matzehuels/fealgraph/pkg/io"
	"github.com/matzehuels/fealgraph/pkg/observability"
)

// TestMain keeps commands away from the user's config and cache.
func TestMain(m *testing.M) {
	home, err := os.MkdirTemp("", "fealgraph-cli-test")
	if err != nil {
		panic(err)
	}
	os.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	os.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))
	code := m.Run()
	os.RemoveAll(home)
	os.Exit(code)
}

// execute runs the root command with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(observability.Reset)

	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"export", "eval", "replay", "differential", "completion"} {
		assert.Contains(t, names, want)
	}
}

func TestExportDefaultArtifacts(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "export", "-o", dir)
	require.NoError(t, err)

	for _, name := range []string{"graph.graphml", "graph.json", "computation_graph.rs"} {
		assert.FileExists(t, filepath.Join(dir, name))
		assert.Contains(t, out, filepath.Join(dir, name))
	}
	assert.Contains(t, out, "94 nodes")
	assert.Contains(t, out, "112 edges")
	assert.NotContains(t, out, "ciphertext")
}

func TestExportWithInputs(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "export", "-o", dir, "-f", "json", "--json-mode", "object",
		"--key", "0123456789abcdef", "--plaintext", "0")
	require.NoError(t, err)

	assert.Contains(t, out, "0xceef2c86f2490752")
	data, err := os.ReadFile(filepath.Join(dir, "graph.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"eval": "0xceef2c86f2490752"`)
	assert.NoFileExists(t, filepath.Join(dir, "graph.graphml"))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "export", "-o", dir, "-f", "json,gif")
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "graph.json"))
}

func TestExportUsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "fealgraph.toml")
	cfg := fmt.Sprintf("[output]\ndir = %q\nformats = [\"schema\"]\n", dir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	_, err := execute(t, "--config", cfgPath, "export")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "computation_graph.rs"))
	assert.NoFileExists(t, filepath.Join(dir, "graph.json"))
}

func TestEvalKnownAnswers(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"zero", []string{"eval"}, "0xf47bfee55dd8ecce"},
		{"master key", []string{"eval", "--key", "0123456789abcdef", "--plaintext", "0"}, "0xceef2c86f2490752"},
		{"decrypt", []string{"eval", "-d", "--key", "0123456789abcdef", "--plaintext", "0xceef2c86f2490752"}, "0x0000000000000000"},
		{"subkeys", []string{"eval", "--subkeys", "1,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0"}, "0xd40f45c3aefe1db4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestEvalTrace(t *testing.T) {
	out, err := execute(t, "eval", "--trace")
	require.NoError(t, err)
	assert.Contains(t, out, "Operands")
	assert.Contains(t, out, "key12_15")
	assert.Contains(t, out, "ciphertext")
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"key and subkeys", []string{"eval", "--key", "1", "--subkeys", "1"}},
		{"short subkeys", []string{"eval", "--subkeys", "1,2,3"}},
		{"bad plaintext", []string{"eval", "--plaintext", "xyz"}},
		{"wide subkey", []string{"eval", "--subkeys", "10000,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestReplayExportedNetwork(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "export", "-o", dir, "-f", "json")
	require.NoError(t, err)
	path := filepath.Join(dir, "graph.json")

	out, err := execute(t, "replay", path, "--key", "1122334455667788", "--plaintext", "deadbeefcafebabe")
	require.NoError(t, err)
	assert.Contains(t, out, "0x812f1e51fe50dd3a")
	assert.NotContains(t, out, "differs")

	out, err = execute(t, "replay", path, "--set", "plaintext=1")
	require.NoError(t, err)
	want := feal.EncryptBlock(feal.Subkeys{}, 1)
	assert.Contains(t, out, hexValue(want, 64))
}

func TestReplayCustomGraph(t *testing.T) {
	a := dag.NewArena()
	x, err := a.Input("x", 8)
	require.NoError(t, err)
	y, err := a.Input("y", 8)
	require.NoError(t, err)
	sum, err := a.XOR(x, y)
	require.NoError(t, err)
	root, err := a.CopyNamed(sum, "sum")
	require.NoError(t, err)
	g, err := dag.Extract(a, root)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "graph.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, fio.WriteJSON(g, f, fio.JSONOptions{Mode: fio.ModeArray}))
	require.NoError(t, f.Close())

	_, err = execute(t, "replay", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"x"`)

	out, err := execute(t, "replay", path, "--set", "x=0f", "--set", "y=f0")
	require.NoError(t, err)
	assert.Contains(t, out, "0xff")

	_, err = execute(t, "replay", path, "--set", "x=100", "--set", "y=0")
	assert.Error(t, err)
}

func TestReplayMissingFile(t *testing.T) {
	_, err := execute(t, "replay", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestDifferentialZeroDelta(t *testing.T) {
	out, err := execute(t, "differential", "--delta", "0", "-n", "12", "-w", "5", "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "12 pairs, 1 distinct differences (fresh)")
	assert.Contains(t, out, "1.0000")
}

func TestDifferentialCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	args := []string{"differential", "-n", "20", "-w", "2", "--seed", "3"}

	first, err := execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, first, "(fresh)")

	second, err := execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, second, "(cached)")
	assert.Equal(t, strings.Replace(first, "(fresh)", "(cached)", 1), second)

	third, err := execute(t, append(args, "--no-cache")...)
	require.NoError(t, err)
	assert.Contains(t, third, "(fresh)")
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := execute(t, "completion", shell)
		require.NoError(t, err, shell)
		assert.True(t, strings.Contains(out, "fealgraph"), shell)
	}
	_, err := execute(t, "completion", "tcsh")
	assert.Error(t, err)
}
