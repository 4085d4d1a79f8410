package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kozaktomas/face-morph/internal/database"
	"github.com/kozaktomas/face-morph/internal/database/postgres"
	"github.com/kozaktomas/face-morph/internal/encoder"
	"github.com/spf13/cobra"
)

var similarCmd = &cobra.Command{
	Use:   "similar",
	Short: "List the headshots closest to a reference photo",
	Long: `Find the k encodings nearest to the reference photo using an HNSW index.

Encodings come from the database cache when DATABASE_URL is set, otherwise the
--in directory is encoded first. Handy for picking a reference or checking
which photos the chain will start with.`,
	RunE: runSimilar,
}

func init() {
	rootCmd.AddCommand(similarCmd)

	similarCmd.Flags().String("reference", "", "Reference photo (required)")
	similarCmd.Flags().String("in", "processed", "Directory to encode when no database is configured")
	similarCmd.Flags().Int("k", 10, "Number of neighbors to list")
	_ = similarCmd.MarkFlagRequired("reference")
}

func runSimilar(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	log := newLogger()
	client := encoder.NewClient(cfg.Encoder.URL, cfg.Encoder.Model)

	pool, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}

	var cache database.EncodingWriter
	var encodings []database.StoredEncoding
	if pool != nil {
		defer pool.Close()
		repo := postgres.NewEncodingRepository(pool)
		cache = repo
		encodings, err = repo.List(ctx, client.Model())
		if err != nil {
			return err
		}
	} else {
		res, err := encoder.EncodeDir(ctx, client, mustGetString(cmd, "in"), encoder.EncodeOptions{
			Concurrency: cfg.Encoder.Concurrency,
			Logger:      log,
		})
		if err != nil {
			return err
		}
		for _, c := range res.Candidates {
			encodings = append(encodings, database.StoredEncoding{
				ContentHash: c.ID,
				Model:       client.Model(),
				FileName:    c.ID,
				Embedding:   c.Vector,
				Dim:         len(c.Vector),
			})
		}
	}

	reference, _, err := encoder.EncodeFile(ctx, client, cache, mustGetString(cmd, "reference"))
	if errors.Is(err, encoder.ErrNoFace) {
		return errors.New("no face found in reference photo")
	}
	if err != nil {
		return err
	}

	index := database.NewEncodingIndex()
	if err := index.Build(encodings); err != nil {
		return err
	}
	log.Debug("built encoding index", "count", index.Count())

	neighbors, err := index.Search(reference, mustGetInt(cmd, "k"))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tDISTANCE\tFILE")
	for i, n := range neighbors {
		fmt.Fprintf(w, "%d\t%.4f\t%s\n", i+1, n.Distance, n.Encoding.FileName)
	}
	return w.Flush()
}
