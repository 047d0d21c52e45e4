// Package config loads fealgraph run configuration from TOML or YAML files.
//
// A configuration file has up to three sections:
//
//	[output]
//	dir = "out"
//	formats = ["graphml", "json", "schema"]
//	json_mode = "array"
//
//	[output.files]
//	json = "graph.json"
//
//	[inputs]
//	plaintext = "0x0000000000000000"
//	key = "0x0123456789abcdef"
//
//	[differential]
//	samples = 10000
//	workers = 4
//	delta = "0x8080000080800000"
//
// The format is chosen by file extension (.toml, .yaml or .yml). Unknown
// keys are rejected, and values are validated before use. Command-line flags
// override file values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/fealgraph/pkg/errors"
	"github.com/matzehuels/fealgraph/pkg/feal"
	"github.com/matzehuels/fealgraph/pkg/pipeline"
	"github.com/matzehuels/fealgraph/pkg/topology"
)

// Defaults of the differential section.
const (
	DefaultSamples = 1000
	DefaultWorkers = 4
	DefaultDelta   = "0x8080000080800000"
)

var validate = validator.New()

// Config is a complete run configuration.
type Config struct {
	Output       OutputConfig       `toml:"output" yaml:"output"`
	Inputs       InputsConfig       `toml:"inputs" yaml:"inputs"`
	Differential DifferentialConfig `toml:"differential" yaml:"differential"`
}

// OutputConfig controls the export artifacts.
type OutputConfig struct {
	Dir      string            `toml:"dir" yaml:"dir" validate:"omitempty,max=500"`
	Formats  []string          `toml:"formats" yaml:"formats" validate:"omitempty,unique,dive,oneof=graphml json schema dot svg png pdf"`
	JSONMode string            `toml:"json_mode" yaml:"json_mode" validate:"omitempty,oneof=array object"`
	Files    map[string]string `toml:"files" yaml:"files" validate:"omitempty,dive,keys,oneof=graphml json schema dot svg png pdf,endkeys,required,max=255"`
	Detailed bool              `toml:"detailed" yaml:"detailed"`
	PNGScale float64           `toml:"png_scale" yaml:"png_scale" validate:"omitempty,gt=0,lte=8"`
}

// InputsConfig holds the values bound to the network, as hex strings.
// Key and Subkeys are mutually exclusive; Subkeys is a full 16-entry FEAL
// key schedule.
type InputsConfig struct {
	Plaintext string   `toml:"plaintext" yaml:"plaintext" validate:"omitempty,max=32"`
	Key       string   `toml:"key" yaml:"key" validate:"omitempty,max=32,excluded_with=Subkeys"`
	Subkeys   []string `toml:"subkeys" yaml:"subkeys" validate:"omitempty,len=16,dive,max=8"`
}

// DifferentialConfig controls the differential command.
type DifferentialConfig struct {
	Samples int    `toml:"samples" yaml:"samples" validate:"omitempty,min=1,max=10000000"`
	Workers int    `toml:"workers" yaml:"workers" validate:"omitempty,min=1,max=256"`
	Delta   string `toml:"delta" yaml:"delta" validate:"omitempty,max=32"`
	Key     string `toml:"key" yaml:"key" validate:"omitempty,max=32"`
	Seed    uint64 `toml:"seed" yaml:"seed"`
}

// Default returns the configuration used without a file.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Dir:      pipeline.DefaultOutputDir,
			JSONMode: pipeline.DefaultJSONMode,
		},
		Differential: DifferentialConfig{
			Samples: DefaultSamples,
			Workers: DefaultWorkers,
			Delta:   DefaultDelta,
		},
	}
}

// Load reads and validates the configuration file at path. Values missing
// from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = decodeTOML(data, cfg)
	case ".yaml", ".yml":
		err = decodeYAML(data, cfg)
	default:
		return nil, errs.New(errs.ErrCodeInvalidConfig, "config %s: unsupported extension %q (want .toml, .yaml or .yml)", path, ext)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func decodeTOML(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks every field, including that input values parse.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return errs.New(errs.ErrCodeInvalidConfig, "%s: validation failed (%s %s)", e.Namespace(), e.Tag(), e.Param())
		}
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "validate")
	}
	if _, err := c.Inputs.Block(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "inputs")
	}
	if c.Differential.Delta != "" {
		if _, err := errs.ParseHex(c.Differential.Delta, 64); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "differential.delta")
		}
	}
	if c.Differential.Key != "" {
		if _, err := errs.ParseHex(c.Differential.Key, 64); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "differential.key")
		}
	}
	return nil
}

// IsSet reports whether any input value is configured.
func (in InputsConfig) IsSet() bool {
	return in.Plaintext != "" || in.Key != "" || len(in.Subkeys) > 0
}

// Schedule returns the configured key schedule: the expansion of Key, the
// explicit Subkeys, or the all-zero schedule.
func (in InputsConfig) Schedule() (feal.Subkeys, error) {
	var k feal.Subkeys
	switch {
	case in.Key != "":
		key, err := errs.ParseHex(in.Key, 64)
		if err != nil {
			return k, fmt.Errorf("key: %w", err)
		}
		return feal.KeySchedule(key), nil
	case len(in.Subkeys) > 0:
		if len(in.Subkeys) != len(k) {
			return k, errs.New(errs.ErrCodeInvalidInput, "subkeys: got %d, want %d", len(in.Subkeys), len(k))
		}
		for i, s := range in.Subkeys {
			v, err := errs.ParseHex(s, 16)
			if err != nil {
				return k, fmt.Errorf("subkeys[%d]: %w", i, err)
			}
			k[i] = uint16(v)
		}
	}
	return k, nil
}

// Block returns the network inputs, or nil if no input is configured. An
// unset plaintext is zero.
func (in InputsConfig) Block() (*topology.Block, error) {
	if !in.IsSet() {
		return nil, nil
	}
	var pt uint64
	if in.Plaintext != "" {
		v, err := errs.ParseHex(in.Plaintext, 64)
		if err != nil {
			return nil, fmt.Errorf("plaintext: %w", err)
		}
		pt = v
	}
	k, err := in.Schedule()
	if err != nil {
		return nil, err
	}
	blk := topology.BlockFromSchedule(pt, k)
	return &blk, nil
}

// PipelineOptions converts the configuration to pipeline options.
func (c *Config) PipelineOptions() (pipeline.Options, error) {
	blk, err := c.Inputs.Block()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		OutputDir: c.Output.Dir,
		Formats:   c.Output.Formats,
		FileNames: c.Output.Files,
		JSONMode:  c.Output.JSONMode,
		PNGScale:  c.Output.PNGScale,
		Detailed:  c.Output.Detailed,
		Inputs:    blk,
	}, nil
}
