package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gar-builder/core/database"
	"gar-builder/core/logger"
	"gar-builder/core/utils"
	"gar-builder/feature/registry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importFlags struct {
	zip     string
	regions string
}

// importCmd copies regions from the registry archive into the SQL entity store
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import registry regions into the database",
	Long: `Reads each region from the registry archive and replaces its rows in the configured
database, so that later runs can use "process --source db".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		zipPath := a.cfg.Region.SourceZip
		overrideString(cmd, "zip", &zipPath, importFlags.zip)

		db, err := database.Connect(a.cfg.Database)
		if err != nil {
			return err
		}
		dst := registry.NewSQLSource(db, a.logger)
		if err := dst.Migrate(); err != nil {
			return err
		}

		src := registry.NewZipSource(zipPath, a.logger)
		regions := utils.ParseList(importFlags.regions)
		if len(regions) == 0 {
			if regions, err = src.Regions(ctx); err != nil {
				return err
			}
		}

		var failed []error
		for _, code := range regions {
			if err := ctx.Err(); err != nil {
				return err
			}
			l := logger.WithRegion(a.logger, code)
			start := time.Now()

			ds, err := src.Load(ctx, code)
			if err == nil {
				err = dst.Save(ctx, code, ds)
			}
			if err != nil {
				l.Error("Region import failed", zap.Error(err))
				failed = append(failed, fmt.Errorf("region %s: %w", code, err))
				continue
			}
			l.Info("Region import finished", zap.Duration("duration", time.Since(start)))
		}

		a.logger.Info("Import finished",
			zap.Int("regions", len(regions)),
			zap.Int("failed", len(failed)),
		)
		return errors.Join(failed...)
	},
}

func init() {
	f := importCmd.Flags()
	f.StringVar(&importFlags.zip, "zip", "", "registry archive path (default region.source_zip)")
	f.StringVar(&importFlags.regions, "regions", "", "comma-separated region codes (default: all regions of the archive)")
	RootCmd.AddCommand(importCmd)
}
