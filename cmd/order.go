package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/kozaktomas/face-morph/internal/chain"
	"github.com/kozaktomas/face-morph/internal/config"
	"github.com/kozaktomas/face-morph/internal/database"
	"github.com/kozaktomas/face-morph/internal/database/postgres"
	"github.com/kozaktomas/face-morph/internal/encoder"
	"github.com/kozaktomas/face-morph/internal/export"
	"github.com/spf13/cobra"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Order headshots into a progressive similarity chain",
	Long: `Encode every headshot and the reference photo, then order the headshots so
the first is the one closest to the reference and each following one is the
closest remaining to its predecessor. Photos passed over for many rounds get a
growing penalty (age weight) so they are not all left for the end.

The ordered photos are copied to the output directory as
NNN_dist-D.DDDD_<name>.`,
	RunE: runOrder,
}

func init() {
	rootCmd.AddCommand(orderCmd)

	orderCmd.Flags().String("reference", "", "Reference photo the chain starts from (required)")
	orderCmd.Flags().String("in", "processed", "Directory with headshots")
	orderCmd.Flags().String("out", "progressive_similar_faces", "Directory for the ordered copies")
	orderCmd.Flags().Float64("age-weight", 0, "Penalty per passed-over round (default from AGE_WEIGHT or 0.015)")
	orderCmd.Flags().Int("workers", 0, "Parallel distance scan workers (default from CHAIN_WORKERS or 1)")
	orderCmd.Flags().Bool("save-run", false, "Store the ordering in the database")
	_ = orderCmd.MarkFlagRequired("reference")
}

type orderParams struct {
	reference string
	inDir     string
	outDir    string
	saveRun   bool
}

func applyOrderFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("age-weight") {
		cfg.Chain.AgeWeight = mustGetFloat64(cmd, "age-weight")
	}
	if cmd.Flags().Changed("workers") {
		cfg.Chain.Workers = mustGetInt(cmd, "workers")
	}
}

func runOrder(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyOrderFlags(cmd, cfg)

	_, err = orderStage(cmd.Context(), cfg, newLogger(), orderParams{
		reference: mustGetString(cmd, "reference"),
		inDir:     mustGetString(cmd, "in"),
		outDir:    mustGetString(cmd, "out"),
		saveRun:   mustGetBool(cmd, "save-run"),
	})
	return err
}

func orderStage(ctx context.Context, cfg *config.Config, log *slog.Logger, p orderParams) ([]chain.Entry, error) {
	pool, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	var cache database.EncodingWriter
	var runs database.RunRepository
	if pool != nil {
		defer pool.Close()
		cache = postgres.NewEncodingRepository(pool)
		runs = postgres.NewRunRepository(pool)
	} else if p.saveRun {
		return nil, errors.New("--save-run needs DATABASE_URL")
	}

	client := encoder.NewClient(cfg.Encoder.URL, cfg.Encoder.Model)

	reference, _, err := encoder.EncodeFile(ctx, client, cache, p.reference)
	if errors.Is(err, encoder.ErrNoFace) {
		return nil, fmt.Errorf("no face found in reference %s", p.reference)
	}
	if err != nil {
		return nil, fmt.Errorf("encode reference: %w", err)
	}

	names, err := encoder.ListImages(p.inDir)
	if err != nil {
		return nil, err
	}
	bar := newProgressBar(len(names), "Encoding headshots", "photos")
	res, err := encoder.EncodeDir(ctx, client, p.inDir, encoder.EncodeOptions{
		Concurrency: cfg.Encoder.Concurrency,
		Cache:       cache,
		Logger:      log,
		OnProgress:  func(done, total int) { _ = bar.Add(1) },
	})
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		return nil, err
	}
	for _, s := range res.Skipped {
		fmt.Printf("[SKIP] No encoding for %s\n", s.File)
	}

	candidates := withoutReference(res.Candidates, p.reference, p.inDir)
	fmt.Printf("[OK] Loaded %d encodings (%d from cache).\n", len(candidates), res.CacheHits)

	entries, err := chain.Build(reference, candidates, chainOptions(ctx, cfg, log))
	if err != nil {
		return nil, fmt.Errorf("build chain: %w", err)
	}

	written, err := export.CopyChain(entries, p.inDir, p.outDir)
	if err != nil {
		return nil, err
	}
	for i, name := range written {
		fmt.Printf("[COPY] %s -> %s\n", entries[i].ID, name)
	}

	if p.saveRun {
		run := database.Run{
			ID:        uuid.New(),
			Reference: filepath.Base(p.reference),
			AgeWeight: cfg.Chain.AgeWeight,
			Entries:   entries,
		}
		if err := runs.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("save run: %w", err)
		}
		fmt.Printf("Saved run %s\n", run.ID)
	}

	fmt.Printf("Ordered %d photos into %s\n", len(entries), p.outDir)
	return entries, nil
}

// chainOptions builds the chain settings. Rounds are only observed when debug
// logging is on, each report copies the age of every pooled candidate.
func chainOptions(ctx context.Context, cfg *config.Config, log *slog.Logger) chain.Options {
	opts := chain.Options{
		AgeWeight: cfg.Chain.AgeWeight,
		Workers:   cfg.Chain.Workers,
	}
	if log.Enabled(ctx, slog.LevelDebug) {
		opts.OnRound = func(r chain.Round) {
			log.Debug("chain round", "round", r.Number, "id", r.ID, "distance", r.Raw, "effective", r.Effective, "age", r.Age)
		}
	}
	return opts
}

// withoutReference drops the reference photo from the pool when it lives in the
// headshot directory itself.
func withoutReference(candidates []chain.Candidate, reference, dir string) []chain.Candidate {
	refAbs, err1 := filepath.Abs(reference)
	dirAbs, err2 := filepath.Abs(dir)
	if err1 != nil || err2 != nil || filepath.Dir(refAbs) != dirAbs {
		return candidates
	}
	name := filepath.Base(refAbs)
	out := make([]chain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.ID != name {
			out = append(out, c)
		}
	}
	return out
}
