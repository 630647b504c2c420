package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"jucyaudio/core/audio"
	"jucyaudio/core/mix"
	"jucyaudio/core/sink"
	"jucyaudio/logger"
	"jucyaudio/repository"
)

// ExportMix renders the given mix to targetPath. The container is inferred
// from the path's extension (.wav or .mp3). The mix is validated before any
// output file is created or truncated; the render itself goes to a uniquely
// named staging file next to the target, which only a completed render
// replaces the target with. On failure the last progress callback carries the
// error text.
func ExportMix(store *repository.Store, decoder *audio.FFmpegDecoder, mixID int64, targetPath string, progress Progress) error {
	out, err := sink.ForPath(targetPath, decoderPath(decoder))
	if err != nil {
		return reportExportError(progress, err)
	}

	m, err := mix.LoadModel(store, mixID)
	if err != nil {
		return reportExportError(progress, fmt.Errorf("cannot load mix %d: %w", mixID, err))
	}
	if len(m.Tracks) == 0 {
		return reportExportError(progress, fmt.Errorf("mix %q has no tracks", m.Info.Name))
	}

	dir := filepath.Dir(targetPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return reportExportError(progress, fmt.Errorf("cannot create target directory %s: %w", dir, err))
		}
	}

	ext := filepath.Ext(targetPath)
	stagingPath := filepath.Join(dir, "."+uuid.NewString()+ext)

	open := func(path string) (audio.Reader, error) {
		return decoder.DecodeFile(path)
	}
	renderer := NewRenderer(m, open, out, stagingPath, progress)
	if err := renderer.Run(); err != nil {
		os.Remove(stagingPath)
		return err
	}

	if strings.EqualFold(ext, ".mp3") {
		if err := sink.TagMP3(stagingPath, m.Info.Name); err != nil {
			// The stream itself is complete; a tagging failure is not fatal.
			logger.Warn("Could not retag exported MP3",
				logger.String("path", stagingPath), logger.ErrorField(err))
		}
	}

	if err := os.Rename(stagingPath, targetPath); err != nil {
		os.Remove(stagingPath)
		return reportExportError(progress, fmt.Errorf("cannot move finished mix to %s: %w", targetPath, err))
	}
	logger.Info("Mix exported", logger.String("path", targetPath))
	return nil
}

func decoderPath(decoder *audio.FFmpegDecoder) string {
	if decoder == nil {
		return ""
	}
	return decoder.FFmpegPath()
}

// reportExportError fires the terminal progress callback for failures that
// happen before the renderer starts.
func reportExportError(progress Progress, err error) error {
	logger.Error("Mix export rejected", logger.ErrorField(err))
	if progress != nil {
		progress(1.0, "Error: "+err.Error())
	}
	return err
}
