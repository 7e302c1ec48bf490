package cmd

import (
	"fmt"

	"gar-builder/feature/artifacts"
	"gar-builder/feature/export"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var mergeFlags struct {
	in     string
	out    string
	upload bool
}

// mergeCmd concatenates per-region files into one national file
var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge region files into a single flat file",
	Long:  `Concatenates every <region>.csv of the input directory, in file name order, under a single header.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()

		in := a.cfg.Region.OutputDir
		overrideString(cmd, "in", &in, mergeFlags.in)

		files, rows, err := export.MergeFiles(in, mergeFlags.out)
		if err != nil {
			return err
		}
		if files == 0 {
			return fmt.Errorf("no region files found in %s", in)
		}
		a.logger.Info("Merge finished",
			zap.Int("files", files),
			zap.Int("rows", rows),
			zap.String("out", mergeFlags.out),
		)

		if !mergeFlags.upload {
			return nil
		}
		svc, err := a.openArtifacts(cmd.Context())
		if err != nil {
			return err
		}
		_, err = svc.Upload(cmd.Context(), mergeFlags.out, artifacts.ExportObject(mergeFlags.out))
		return err
	},
}

func init() {
	f := mergeCmd.Flags()
	f.StringVar(&mergeFlags.in, "in", "", "directory of region files (default region.output_dir)")
	f.StringVar(&mergeFlags.out, "out", "data/gar.csv", "merged output file")
	f.BoolVar(&mergeFlags.upload, "upload", false, "upload the merged file to object storage")
	RootCmd.AddCommand(mergeCmd)
}
