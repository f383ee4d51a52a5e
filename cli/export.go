package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"hawkset.claimhawk.org/common"
	"hawkset.claimhawk.org/db"
	"hawkset.claimhawk.org/export"
)

func init() {
	RootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("output", "o", "", "output file (defaults to stdout)")
}

var exportCmd = &cobra.Command{
	Use:   "export <dataset>",
	Short: "export a dataset as training annotations",
	Long: `Export all samples of a dataset as a JSON array of training annotations
in conversation format, without going through the HTTP API.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		output, _ := cmd.Flags().GetString("output")

		store, err := db.NewCouchDBService(loadConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		if _, err := store.GetDataset(name); err != nil {
			return err
		}

		samples, err := store.GetSamples(name, 0)
		if err != nil {
			return err
		}

		annotations, err := export.BuildAnnotations(context.Background(), name, samples)
		if err != nil {
			return err
		}

		w := os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}

		if err := export.WriteJSON(w, annotations); err != nil {
			return err
		}

		if output != "" {
			common.Logger.Info("Exported ", len(annotations), " annotations to ", output)
		}
		return nil
	},
}
