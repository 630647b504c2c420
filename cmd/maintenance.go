package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/spf13/cobra"
)

var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Optimise library indices and reclaim space",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, _, err := initApp()
		if err != nil {
			return err
		}
		defer closeApp()

		var cancel atomic.Bool
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt)
		defer signal.Stop(sigCh)
		go func() {
			<-sigCh
			cancel.Store(true)
		}()

		if err := store.RunMaintenance(&cancel); err != nil {
			return err
		}
		fmt.Println("Library maintenance finished.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(maintenanceCmd)
}
