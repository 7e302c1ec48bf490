package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gar-builder/core/database"
	"gar-builder/core/utils"
	"gar-builder/feature/export"
	"gar-builder/feature/region"
	"gar-builder/feature/registry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var processFlags struct {
	regions string
	source  string
	zip     string
	out     string
	upload  bool
}

// processCmd builds the flat address file of every requested region
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Build flat address files per region",
	Long: `Loads each region from the registry archive (or the imported database), normalizes the
postal history, resolves the municipal hierarchy and writes <out>/<region>.csv.
A failing region is reported and skipped; the command exits non-zero if any region failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := a.cfg.Region
		overrideString(cmd, "source", &cfg.Source, processFlags.source)
		overrideString(cmd, "zip", &cfg.SourceZip, processFlags.zip)
		overrideString(cmd, "out", &cfg.OutputDir, processFlags.out)

		types, err := utils.ParseIntSet(cfg.HouseTypes)
		if err != nil {
			return fmt.Errorf("region.house_types: %w", err)
		}

		src, err := openSource(cfg, a)
		if err != nil {
			return err
		}

		proc := region.NewProcessor(src, export.NewDirSink(cfg.OutputDir), registry.FilterOptions{HouseTypes: types}, a.logger, a.metrics)
		if processFlags.upload {
			svc, err := a.openArtifacts(ctx)
			if err != nil {
				return err
			}
			proc.WithPublisher(svc)
		}

		report, err := proc.ProcessAll(ctx, utils.ParseList(processFlags.regions))
		if err != nil {
			return err
		}

		a.logger.Info("Processing finished",
			zap.Int("succeeded", len(report.Succeeded)),
			zap.Int("failed", len(report.Failed)),
			zap.String("out", cfg.OutputDir),
		)
		return report.Err()
	},
}

// openSource returns the Entity Store selected by cfg.Source.
func openSource(cfg region.Config, a *app) (registry.Source, error) {
	switch cfg.Source {
	case region.SourceZip, "":
		return registry.NewZipSource(cfg.SourceZip, a.logger), nil
	case region.SourceDB:
		db, err := database.Connect(a.cfg.Database)
		if err != nil {
			return nil, err
		}
		src := registry.NewSQLSource(db, a.logger)
		if err := src.CheckSchema(); err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown region source %q (want %s or %s)", cfg.Source, region.SourceZip, region.SourceDB)
	}
}

// overrideString replaces *dst with value when the flag was set explicitly.
func overrideString(cmd *cobra.Command, flag string, dst *string, value string) {
	if cmd.Flags().Changed(flag) {
		*dst = value
	}
}

func overrideInt(cmd *cobra.Command, flag string, dst *int, value int) {
	if cmd.Flags().Changed(flag) {
		*dst = value
	}
}

func init() {
	f := processCmd.Flags()
	f.StringVar(&processFlags.regions, "regions", "", "comma-separated region codes (default: all regions of the source)")
	f.StringVar(&processFlags.source, "source", "", "entity store: zip or db (default region.source)")
	f.StringVar(&processFlags.zip, "zip", "", "registry archive path (default region.source_zip)")
	f.StringVar(&processFlags.out, "out", "", "output directory (default region.output_dir)")
	f.BoolVar(&processFlags.upload, "upload", false, "upload each region file to object storage")
	RootCmd.AddCommand(processCmd)
}
