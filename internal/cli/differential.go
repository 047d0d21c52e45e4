package cli

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"math/rand/v2"
	"slices"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/fealgraph/pkg/cache"
	"github.com/matzehuels/fealgraph/pkg/config"
	"github.com/matzehuels/fealgraph/pkg/feal"
	"github.com/matzehuels/fealgraph/pkg/observability"
	"github.com/matzehuels/fealgraph/pkg/topology"
)

// defaultTop is the number of histogram rows printed by default.
const defaultTop = 10

// diffParams configures one differential run.
type diffParams struct {
	Samples int
	Workers int
	Delta   uint64
	Key     uint64
	Seed    uint64
}

// histogram counts how often each ciphertext difference occurred.
type histogram struct {
	Counts  map[uint64]int
	Samples int
}

// diffCount is one histogram bucket.
type diffCount struct {
	Diff  uint64
	Count int
}

// Top returns the n most frequent differences, most frequent first. Ties
// are ordered by difference.
func (h *histogram) Top(n int) []diffCount {
	out := make([]diffCount, 0, len(h.Counts))
	for _, d := range slices.Sorted(maps.Keys(h.Counts)) {
		out = append(out, diffCount{Diff: d, Count: h.Counts[d]})
	}
	slices.SortStableFunc(out, func(x, y diffCount) int { return cmp.Compare(y.Count, x.Count) })
	return out[:min(n, len(out))]
}

// differentialCommand creates the differential command.
func (c *CLI) differentialCommand() *cobra.Command {
	var (
		p        config.DifferentialConfig
		top      int
		deltaStr string
		keyStr   string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "differential",
		Short: "Histogram ciphertext differences for a fixed plaintext difference",
		Long: `Push random plaintext pairs with a fixed XOR difference through the network
and count the resulting ciphertext differences.

Each worker builds its own network and draws plaintexts from its own
generator seeded with (seed, worker), so a run is reproducible for a given
seed and worker count. Settings default to the [differential] section of
the config file.

Results are cached locally, keyed by all settings, so repeating a run is
instant. Use --no-cache to recompute.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			d := cfg.Differential
			flags := cmd.Flags()
			if flags.Changed("samples") {
				d.Samples = p.Samples
			}
			if flags.Changed("workers") {
				d.Workers = p.Workers
			}
			if flags.Changed("seed") {
				d.Seed = p.Seed
			}
			if flags.Changed("delta") {
				d.Delta = deltaStr
			}
			if flags.Changed("key") {
				d.Key = keyStr
			}
			params, err := diffParamsOf(d)
			if err != nil {
				return err
			}
			store := c.newCache(noCache)
			defer store.Close()
			return c.runDifferential(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), store, params, top)
		},
	}

	cmd.Flags().IntVarP(&p.Samples, "samples", "n", config.DefaultSamples, "number of plaintext pairs")
	cmd.Flags().IntVarP(&p.Workers, "workers", "w", config.DefaultWorkers, "number of concurrent workers")
	cmd.Flags().Uint64Var(&p.Seed, "seed", 0, "random seed")
	cmd.Flags().StringVar(&deltaStr, "delta", config.DefaultDelta, "64-bit plaintext XOR difference (hex)")
	cmd.Flags().StringVar(&keyStr, "key", "", "64-bit master key (hex), zero if unset")
	cmd.Flags().IntVar(&top, "top", defaultTop, "number of differences to print")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")

	return cmd
}

// diffParamsOf parses and checks the differential settings.
func diffParamsOf(d config.DifferentialConfig) (diffParams, error) {
	p := diffParams{Samples: d.Samples, Workers: d.Workers, Seed: d.Seed}
	if p.Samples < 1 || p.Workers < 1 {
		return p, fmt.Errorf("samples and workers must be positive (got %d, %d)", p.Samples, p.Workers)
	}
	var err error
	if d.Delta != "" {
		if p.Delta, err = parseHexFlag("delta", d.Delta, 64); err != nil {
			return p, err
		}
	}
	if d.Key != "" {
		if p.Key, err = parseHexFlag("key", d.Key, 64); err != nil {
			return p, err
		}
	}
	return p, nil
}

// runDifferential runs the pairs, or loads them from store, and prints the
// most frequent differences.
func (c *CLI) runDifferential(ctx context.Context, w, status io.Writer, store cache.Cache, p diffParams, top int) error {
	logger := loggerFromContext(ctx)
	key := cache.Key("differential", p)

	hist, cached := loadHistogram(ctx, store, key)
	if !cached {
		logger.Debug("Starting differential run", "samples", p.Samples, "workers", p.Workers, "delta", hexValue(p.Delta, 64))
		spinner := newSpinner(ctx, status, fmt.Sprintf("Encrypting %d pairs...", p.Samples))
		spinner.Start()
		prog := newProgress(logger)
		var err error
		hist, err = differential(ctx, p, func(done int) {
			spinner.SetMessage(fmt.Sprintf("Encrypting pairs... %d/%d", done, p.Samples))
		})
		spinner.Stop()
		if err != nil {
			return fmt.Errorf("differential: %w", err)
		}
		prog.done(fmt.Sprintf("Encrypted %d pairs", hist.Samples))
		storeHistogram(ctx, store, key, hist, logger)
	}

	origin := iconFresh
	if cached {
		origin = iconCached
	}
	printSuccess(w, "%d pairs, %d distinct differences (%s)", hist.Samples, len(hist.Counts), origin)
	printKeyValue(w, "delta", hexValue(p.Delta, 64))
	var rows [][]string
	for _, dc := range hist.Top(top) {
		rows = append(rows, []string{
			hexValue(dc.Diff, 64),
			strconv.Itoa(dc.Count),
			strconv.FormatFloat(float64(dc.Count)/float64(hist.Samples), 'f', 4, 64),
		})
	}
	printTable(w, []string{"Difference", "Count", "Fraction"}, rows)
	return nil
}

// differential encrypts p.Samples plaintext pairs (x, x^p.Delta) under
// p.Key with p.Workers networks in parallel. progress, if set, is called
// with the running number of finished pairs.
func differential(ctx context.Context, p diffParams, progress func(done int)) (*histogram, error) {
	start := time.Now()
	k := feal.KeySchedule(p.Key)
	parts := make([]map[uint64]int, p.Workers)
	var finished atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for worker := range p.Workers {
		n := p.Samples / p.Workers
		if worker < p.Samples%p.Workers {
			n++
		}
		g.Go(func() error {
			net, err := topology.Build()
			if err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(p.Seed, uint64(worker)))
			counts := make(map[uint64]int)
			for range n {
				if err := gctx.Err(); err != nil {
					return err
				}
				x := rng.Uint64()
				c0, err := encryptWith(net, k, x)
				if err != nil {
					return err
				}
				c1, err := encryptWith(net, k, x^p.Delta)
				if err != nil {
					return err
				}
				counts[c0^c1]++
				if done := finished.Add(1); progress != nil {
					progress(int(done))
				}
			}
			parts[worker] = counts
			return nil
		})
	}
	err := g.Wait()
	observability.Eval().OnBatchComplete(ctx, p.Workers, int(finished.Load()), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	hist := &histogram{Counts: make(map[uint64]int), Samples: p.Samples}
	for _, counts := range parts {
		for d, n := range counts {
			hist.Counts[d] += n
		}
	}
	return hist, nil
}

func loadHistogram(ctx context.Context, store cache.Cache, key string) (*histogram, bool) {
	data, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var h histogram
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, false
	}
	return &h, true
}

func storeHistogram(ctx context.Context, store cache.Cache, key string, h *histogram, logger *log.Logger) {
	data, err := json.Marshal(h)
	if err == nil {
		err = store.Set(ctx, key, data, 0)
	}
	if err != nil {
		logger.Warn("Could not cache result", "err", err)
	}
}

func encryptWith(net *topology.Network, k feal.Subkeys, block uint64) (uint64, error) {
	if err := net.BindSchedule(block, k); err != nil {
		return 0, err
	}
	return net.Encrypt()
}
