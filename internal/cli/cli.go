package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fealgraph/pkg/buildinfo"
	"github.com/matzehuels/fealgraph/pkg/cache"
	"github.com/matzehuels/fealgraph/pkg/config"
	errs "github.com/matzehuels/fealgraph/pkg/errors"
	"github.com/matzehuels/fealgraph/pkg/feal"
	"github.com/matzehuels/fealgraph/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "fealgraph"

// configNames are looked up, in order, in the config directory when no
// --config flag is given.
var configNames = []string{"config.toml", "config.yaml", "config.yml"}

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Fealgraph builds the FEAL-8 cipher as a data-flow graph",
		Long: `Fealgraph builds the 8-round FEAL block cipher as a directed acyclic graph of
bit-level operations, evaluates it, and exports it as GraphML, JSON and a
typed schema for graph viewers.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			observability.SetPipelineHooks(&logHooks{logger: c.Logger})
			observability.SetEvalHooks(&logHooks{logger: c.Logger})
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "configuration file (.toml, .yaml, .yml)")

	root.AddCommand(c.exportCommand())
	root.AddCommand(c.evalCommand())
	root.AddCommand(c.replayCommand())
	root.AddCommand(c.differentialCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration and Paths
// =============================================================================

// loadConfig loads the --config file, or the first config file found in the
// config directory, or the defaults.
func (c *CLI) loadConfig() (*config.Config, error) {
	path := c.configPath
	if path == "" {
		path = discoverConfig()
	}
	if path == "" {
		return config.Default(), nil
	}
	c.Logger.Debug("Loading config", "path", path)
	return config.Load(path)
}

func discoverConfig() string {
	dir, err := configDir()
	if err != nil {
		return ""
	}
	for _, name := range configNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// cacheDir returns the cache directory using XDG standard (~/.cache/fealgraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// newCache opens the result cache, or a null cache when disabled or when
// the cache directory is unavailable.
func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err == nil {
		var fc cache.Cache
		if fc, err = cache.NewFileCache(dir); err == nil {
			return fc
		}
	}
	c.Logger.Warn("Caching disabled", "err", err)
	return cache.NewNullCache()
}

// configDir returns the config directory using XDG standard (~/.config/fealgraph/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// =============================================================================
// Input Flags
// =============================================================================

// inputFlags are the --plaintext, --key and --subkeys flags shared by the
// commands that bind network inputs.
type inputFlags struct {
	plaintext string
	key       string
	subkeys   string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.plaintext, "plaintext", "", "64-bit plaintext block (hex)")
	cmd.Flags().StringVar(&f.key, "key", "", "64-bit master key (hex), expanded with the FEAL key schedule")
	cmd.Flags().StringVar(&f.subkeys, "subkeys", "", "16 comma-separated 16-bit subkeys (hex)")
	cmd.MarkFlagsMutuallyExclusive("key", "subkeys")
}

// apply overrides the configured inputs with the flags that were set. A key
// flag replaces configured subkeys and the other way round.
func (f *inputFlags) apply(in *config.InputsConfig) {
	if f.plaintext != "" {
		in.Plaintext = f.plaintext
	}
	if f.key != "" {
		in.Key, in.Subkeys = f.key, nil
	}
	if f.subkeys != "" {
		in.Key, in.Subkeys = "", parseList(f.subkeys)
	}
}

// inputs returns the plaintext and key schedule after applying the flags.
// Unset values are zero.
func (f *inputFlags) inputs(cfg *config.Config) (uint64, feal.Subkeys, error) {
	f.apply(&cfg.Inputs)
	blk, err := cfg.Inputs.Block()
	if err != nil {
		return 0, feal.Subkeys{}, err
	}
	if blk == nil {
		return 0, feal.Subkeys{}, nil
	}
	k, err := cfg.Inputs.Schedule()
	return blk.Plaintext, k, err
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseList splits a comma-separated flag value, dropping blanks.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseHexFlag parses a hex flag value of the given width.
func parseHexFlag(name, value string, bits int) (uint64, error) {
	v, err := errs.ParseHex(value, bits)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", name, err)
	}
	return v, nil
}
