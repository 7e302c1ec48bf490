package cmd

import (
	"context"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"gar-builder/core/changelog"
	"gar-builder/feature/artifacts"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var changelogFlags struct {
	out         string
	chunkSize   int
	workers     int
	fromStorage bool
	upload      bool
}

// changelogCmd compares two flat exports
var changelogCmd = &cobra.Command{
	Use:   "changelog OLD NEW",
	Short: "Compute the change log between two exports",
	Long: `Compares two flat exports keyed by (guid, current flag, postal code) and writes one row per
new, deleted or changed record. With --from-storage, OLD and NEW are object keys that are
downloaded into the work directory first.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := a.cfg.Changelog
		overrideInt(cmd, "chunk-size", &cfg.ChunkSize, changelogFlags.chunkSize)
		overrideInt(cmd, "workers", &cfg.Workers, changelogFlags.workers)

		oldPath, newPath := args[0], args[1]
		outDir := filepath.Dir(newPath)

		var svc *artifacts.Service
		if changelogFlags.fromStorage || changelogFlags.upload {
			if svc, err = a.openArtifacts(ctx); err != nil {
				return err
			}
		}

		if changelogFlags.fromStorage {
			inputs := filepath.Join(cfg.WorkDir, "inputs-"+uuid.NewString())
			defer os.RemoveAll(inputs)
			if oldPath, err = fetch(ctx, svc, oldPath, inputs, "old"); err != nil {
				return err
			}
			if newPath, err = fetch(ctx, svc, newPath, inputs, "new"); err != nil {
				return err
			}
			outDir = filepath.Dir(filepath.Clean(cfg.WorkDir))
		}

		out := changelogFlags.out
		if out == "" {
			out = filepath.Join(outDir, defaultChangelogName(args[0], args[1]))
		}

		engine := changelog.NewEngine(cfg, changelog.DefaultLayout(cfg.ContentSeparator), a.logger, a.metrics)
		summary, err := engine.Run(ctx, oldPath, newPath, out)
		if err != nil {
			return err
		}

		a.logger.Info("Change log finished",
			zap.String("run_id", summary.RunID),
			zap.Int64("rows_old", summary.RowsOld),
			zap.Int64("rows_new", summary.RowsNew),
			zap.Int64("new", summary.Entries[changelog.StatusNew]),
			zap.Int64("deleted", summary.Entries[changelog.StatusDeleted]),
			zap.Int64("changed", summary.Entries[changelog.StatusChanged]),
			zap.String("out", out),
		)

		if !changelogFlags.upload {
			return nil
		}
		_, err = svc.Upload(ctx, out, artifacts.ChangelogObject(out))
		return err
	},
}

// defaultChangelogName is <old>_<new>_change_log.csv built from the input base names.
func defaultChangelogName(oldName, newName string) string {
	return stem(oldName) + "_" + stem(newName) + "_change_log.csv"
}

func stem(name string) string {
	base := path.Base(filepath.ToSlash(name))
	return strings.TrimSuffix(base, path.Ext(base))
}

// fetch downloads object into dir under a version-specific name.
func fetch(ctx context.Context, svc *artifacts.Service, object, dir, version string) (string, error) {
	local := filepath.Join(dir, version+"_"+path.Base(object))
	if _, err := svc.Download(ctx, object, local); err != nil {
		return "", err
	}
	return local, nil
}

func init() {
	f := changelogCmd.Flags()
	f.StringVar(&changelogFlags.out, "out", "", "output file (default <dir of NEW>/<OLD>_<NEW>_change_log.csv)")
	f.IntVar(&changelogFlags.chunkSize, "chunk-size", 0, "rows held in memory per chunk (default changelog.chunk_size)")
	f.IntVar(&changelogFlags.workers, "workers", 0, "prefixes processed at once (default changelog.workers)")
	f.BoolVar(&changelogFlags.fromStorage, "from-storage", false, "treat OLD and NEW as object storage keys")
	f.BoolVar(&changelogFlags.upload, "upload", false, "upload the change log to object storage")
	RootCmd.AddCommand(changelogCmd)
}
