package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/fealgraph/pkg/errors"
	"github.com/matzehuels/fealgraph/pkg/feal"
	"github.com/matzehuels/fealgraph/pkg/pipeline"
	"github.com/matzehuels/fealgraph/pkg/topology"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "fealgraph.toml", `
[output]
dir = "out"
formats = ["graphml", "json"]
json_mode = "object"

[output.files]
json = "nodes.json"

[inputs]
plaintext = "0x0011223344556677"
key = "0x0123_4567_89ab_cdef"

[differential]
samples = 50
workers = 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, []string{"graphml", "json"}, cfg.Output.Formats)
	assert.Equal(t, "object", cfg.Output.JSONMode)
	assert.Equal(t, map[string]string{"json": "nodes.json"}, cfg.Output.Files)
	assert.Equal(t, 50, cfg.Differential.Samples)
	assert.Equal(t, 2, cfg.Differential.Workers)
	assert.Equal(t, DefaultDelta, cfg.Differential.Delta, "unset values keep defaults")

	blk, err := cfg.Inputs.Block()
	require.NoError(t, err)
	want := topology.BlockFromSchedule(0x0011223344556677, feal.KeySchedule(0x0123456789abcdef))
	assert.Equal(t, &want, blk)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "fealgraph.yaml", `
output:
  dir: artifacts
  formats: [schema]
inputs:
  subkeys: ["1", "2", "3", "4", "5", "6", "7", "8", "9", "a", "b", "c", "d", "e", "f", "0x10"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "artifacts", cfg.Output.Dir)
	assert.Equal(t, []string{"schema"}, cfg.Output.Formats)

	k, err := cfg.Inputs.Schedule()
	require.NoError(t, err)
	assert.Equal(t, feal.Subkeys{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}, k)

	blk, err := cfg.Inputs.Block()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), blk.Plaintext)
	assert.Equal(t, uint64(0x0009000a000b000c), blk.PreWhitening)
	assert.Equal(t, uint64(0x000d000e000f0010), blk.PostWhitening)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		code    errs.Code
	}{
		{"extension", "config.ini", "", errs.ErrCodeInvalidConfig},
		{"toml syntax", "c.toml", "[output\n", errs.ErrCodeInvalidConfig},
		{"toml unknown key", "c.toml", "[output]\ncolour = 1\n", errs.ErrCodeInvalidConfig},
		{"yaml unknown key", "c.yaml", "output:\n  colour: 1\n", errs.ErrCodeInvalidConfig},
		{"bad format", "c.toml", "[output]\nformats = [\"bmp\"]\n", errs.ErrCodeInvalidConfig},
		{"bad json mode", "c.yml", "output:\n  json_mode: table\n", errs.ErrCodeInvalidConfig},
		{"key and subkeys", "c.toml", "[inputs]\nkey = \"1\"\nsubkeys = [\"0\",\"0\",\"0\",\"0\",\"0\",\"0\",\"0\",\"0\",\"0\",\"0\",\"0\",\"0\",\"0\",\"0\",\"0\",\"0\"]\n", errs.ErrCodeInvalidConfig},
		{"short subkeys", "c.toml", "[inputs]\nsubkeys = [\"0\"]\n", errs.ErrCodeInvalidConfig},
		{"bad hex", "c.toml", "[inputs]\nplaintext = \"xyz\"\n", errs.ErrCodeInvalidConfig},
		{"wide subkey", "c.toml", "[inputs]\nsubkeys = [\"10000\",\"0\",\"0\",\"0\",\"0\",\"0\",\"0\",\"0\",\"0\",\"0\",\"0\",\"0\",\"0\",\"0\",\"0\",\"0\"]\n", errs.ErrCodeInvalidConfig},
		{"workers", "c.toml", "[differential]\nworkers = 1000\n", errs.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Equal(t, tt.code, errs.GetCode(err), "err = %v", err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Equal(t, errs.ErrCodeFileNotFound, errs.GetCode(err))
}

func TestInputsUnset(t *testing.T) {
	blk, err := InputsConfig{}.Block()
	require.NoError(t, err)
	assert.Nil(t, blk)
}

func TestPipelineOptions(t *testing.T) {
	cfg := Default()
	cfg.Output.Formats = []string{"json"}
	cfg.Inputs.Plaintext = "1"

	opts, err := cfg.PipelineOptions()
	require.NoError(t, err)
	assert.Equal(t, pipeline.DefaultOutputDir, opts.OutputDir)
	assert.Equal(t, []string{"json"}, opts.Formats)
	require.NotNil(t, opts.Inputs)
	assert.Equal(t, uint64(1), opts.Inputs.Plaintext)
	assert.NoError(t, opts.ValidateAndSetDefaults())
}
