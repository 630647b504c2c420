package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/spf13/cobra"

	"jucyaudio/core/scan"
)

var scanCmd = &cobra.Command{
	Use:   "scan <directory>",
	Short: "Scan a directory into the track library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, decoder, err := initApp()
		if err != nil {
			return err
		}
		defer closeApp()

		// Ctrl-C flips the cancel flag; the scanner stops at the next file.
		var cancel atomic.Bool
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt)
		defer signal.Stop(sigCh)
		go func() {
			<-sigCh
			cancel.Store(true)
		}()

		scanner := scan.NewScanner(store, decoder)
		result, err := scanner.ScanFolder(args[0], &cancel)
		if err != nil {
			return err
		}

		fmt.Printf("Scanned %d files: %d added, %d updated, %d marked missing\n",
			result.FilesSeen, result.Added, result.Updated, result.Missing)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
