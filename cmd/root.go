package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jucyaudio/config"
	"jucyaudio/core/audio"
	"jucyaudio/db"
	"jucyaudio/logger"
	"jucyaudio/repository"
)

var rootCmd = &cobra.Command{
	Use:   "jucyaudio",
	Short: "jucyaudio compiles DJ-style mixes from a local track library.",
	Long: `jucyaudio maintains a local music library and renders persisted mixes
into continuous WAV or MP3 files with sample-accurate crossfades and
gain envelopes.`,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initApp loads configuration, initialises logging and opens the library
// store. Every subcommand starts here.
func initApp() (*config.Config, *repository.Store, *audio.FFmpegDecoder, error) {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    20,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})

	if err := db.ConnectDB(cfg); err != nil {
		return nil, nil, nil, err
	}
	if err := db.InitDB(); err != nil {
		db.CloseDB()
		return nil, nil, nil, err
	}
	if err := db.ConnectGormDB(cfg); err != nil {
		db.CloseDB()
		return nil, nil, nil, err
	}

	store := repository.NewStore(db.DB, db.GormDB)
	decoder := audio.NewFFmpegDecoder(cfg.FFmpegPath)
	return cfg, store, decoder, nil
}

// closeApp releases the database handles.
func closeApp() {
	db.CloseGormDB()
	db.CloseDB()
}
