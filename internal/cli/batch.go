package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/OpenDotSo/solidity/pkg/solsmith"
)

// batchConfig describes a corpus of consecutive seeds.
type batchConfig struct {
	count     int
	startSeed uint64
	dir       string
	workers   int
	progress  bool
}

func newBatchCmd() *cobra.Command {
	flags := newOptionFlags()
	cfg := batchConfig{
		count:   100,
		workers: runtime.NumCPU(),
	}

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Write one program per seed into a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			logLevel, err := cmd.Flags().GetString("log-level")
			if err != nil {
				return err
			}

			opts, err := flags.resolve(cmd, configPath)
			if err != nil {
				return err
			}
			opts.Logger, err = newLogger(cmd.ErrOrStderr(), logLevel)
			if err != nil {
				return err
			}
			if err := opts.Validate(); err != nil {
				return err
			}
			if cfg.count < 1 {
				return fmt.Errorf("count must be at least 1")
			}
			if cfg.workers < 1 {
				return fmt.Errorf("workers must be at least 1")
			}
			if err := os.MkdirAll(cfg.dir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			var bar *progressbar.ProgressBar
			if cfg.progress {
				bar = progressbar.NewOptions(
					cfg.count,
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSetDescription("synthesizing"),
					progressbar.OptionShowCount(),
				)
			}

			err = runBatch(cmd, opts, cfg, bar)
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				return err
			}
			opts.Logger.Info().
				Int("count", cfg.count).
				Uint64("startSeed", cfg.startSeed).
				Str("dir", cfg.dir).
				Msg("batch complete")
			return nil
		},
	}

	cmd.Flags().IntVarP(&cfg.count, "count", "n", cfg.count, "number of programs")
	cmd.Flags().Uint64Var(&cfg.startSeed, "start-seed", cfg.startSeed, "seed of the first program")
	cmd.Flags().StringVarP(&cfg.dir, "dir", "d", ".", "output directory")
	cmd.Flags().IntVarP(&cfg.workers, "workers", "j", cfg.workers, "parallel workers")
	cmd.Flags().BoolVar(&cfg.progress, "progress", true, "show a progress bar on stderr")
	flags.register(cmd)

	_ = cmd.MarkFlagDirname("dir")

	return cmd
}

// runBatch gives every seed its own Synthesizer, so no random stream or
// program state is shared between workers.
func runBatch(cmd *cobra.Command, opts solsmith.Options, cfg batchConfig, bar *progressbar.ProgressBar) error {
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.workers)

	for i := 0; i < cfg.count; i++ {
		seed := cfg.startSeed + uint64(i)
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			synthesizer, err := solsmith.NewSynthesizer(opts)
			if err != nil {
				return err
			}
			program := synthesizer.Synthesize(seed)
			path := filepath.Join(cfg.dir, fmt.Sprintf("seed_%d.sol", seed))
			if err := os.WriteFile(path, []byte(program.Text), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	return g.Wait()
}
