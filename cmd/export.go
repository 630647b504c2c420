package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"jucyaudio/core/render"
)

var (
	exportMixID int64
	exportOut   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a mix to a .wav or .mp3 file",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, decoder, err := initApp()
		if err != nil {
			return err
		}
		defer closeApp()

		progress := func(p float64, status string) {
			fmt.Printf("\r[%3.0f%%] %s", p*100, status)
			if p >= 1.0 {
				fmt.Println()
			}
		}

		return render.ExportMix(store, decoder, exportMixID, exportOut, progress)
	},
}

func init() {
	exportCmd.Flags().Int64Var(&exportMixID, "mix", 0, "id of the mix to render")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "target file (.wav or .mp3)")
	exportCmd.MarkFlagRequired("mix")
	exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}
