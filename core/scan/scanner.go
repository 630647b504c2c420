// Package scan walks library folders and keeps the track table in sync with
// the filesystem: new files are inserted, changed files re-read, vanished
// files flagged missing.
package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dhowden/tag"

	"jucyaudio/core/audio"
	"jucyaudio/logger"
	"jucyaudio/model"
	"jucyaudio/repository"
)

var supportedExtensions = map[string]struct{}{
	".aac":  {},
	".aiff": {},
	".flac": {},
	".m4a":  {},
	".mp3":  {},
	".ogg":  {},
	".opus": {},
	".wav":  {},
	".wma":  {},
}

// Result summarises one folder scan.
type Result struct {
	FilesSeen  int64
	Added      int64
	Updated    int64
	Missing    int64
	TotalBytes int64
}

// Scanner imports audio files into the library store.
type Scanner struct {
	store   *repository.Store
	decoder *audio.FFmpegDecoder
}

// NewScanner creates a scanner over the given store and decoder.
func NewScanner(store *repository.Store, decoder *audio.FFmpegDecoder) *Scanner {
	return &Scanner{store: store, decoder: decoder}
}

// ScanFolder walks root serially, upserting every supported audio file and
// updating the folder row's counts. The cancel flag is polled per file;
// cancelling stops the walk without error. Tracks previously under root that
// the walk no longer sees are marked missing.
func (s *Scanner) ScanFolder(root string, cancel *atomic.Bool) (*Result, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	folder, err := s.store.Folders.GetFolderByPath(root)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		folder = &model.Folder{FsPath: root}
		if err := s.store.Folders.CreateFolder(folder); err != nil {
			return nil, err
		}
	}

	result := &Result{}
	seen := make(map[string]bool)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cancel != nil && cancel.Load() {
			return filepath.SkipAll
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logger.Warn("Cannot stat file", logger.String("path", path), logger.ErrorField(err))
			return nil
		}

		seen[path] = true
		result.FilesSeen++
		result.TotalBytes += info.Size()
		s.upsertTrack(folder.ID, path, info, result)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// A cancelled walk has not seen everything; skip the missing sweep and
	// the folder counts rather than flagging tracks the walk never reached.
	if cancel != nil && cancel.Load() {
		logger.Info("Folder scan cancelled", logger.String("root", root))
		return result, nil
	}

	if err := s.markMissing(root, seen, result); err != nil {
		return nil, err
	}

	folder.NumFiles = result.FilesSeen
	folder.TotalBytes = result.TotalBytes
	folder.LastScanned = time.Now().UnixMilli()
	if err := s.store.Folders.UpdateFolder(folder); err != nil {
		return nil, err
	}

	logger.Info("Folder scan finished",
		logger.String("root", root),
		logger.Int64("seen", result.FilesSeen),
		logger.Int64("added", result.Added),
		logger.Int64("updated", result.Updated),
		logger.Int64("missing", result.Missing))
	return result, nil
}

// upsertTrack inserts a new track or refreshes an existing one whose size or
// mtime changed. Metadata failures degrade to filename-derived fields rather
// than skipping the file.
func (s *Scanner) upsertTrack(folderID int64, path string, info fs.FileInfo, result *Result) {
	mtimeMs := info.ModTime().UnixMilli()

	existing, err := s.store.Tracks.GetTrackByFilepath(path)
	if err != nil {
		logger.Warn("Track lookup failed", logger.String("path", path), logger.ErrorField(err))
		return
	}
	if existing != nil && existing.LastModifiedFs == mtimeMs && existing.FileSizeBytes == info.Size() {
		if existing.IsMissing {
			if err := s.store.Tracks.UpdateMissingFlag(existing.ID, false); err != nil {
				logger.Warn("Cannot clear missing flag", logger.Int64("trackId", existing.ID), logger.ErrorField(err))
			}
		}
		return
	}

	track := &model.Track{ID: model.UnsavedID}
	if existing != nil {
		track = existing
	}
	track.FolderID = folderID
	track.Filepath = path
	track.FileSizeBytes = info.Size()
	track.LastModifiedFs = mtimeMs
	track.LastScanned = time.Now().UnixMilli()
	track.IsMissing = false

	s.readMetadata(path, track)

	if probe, err := s.decoder.Probe(path); err == nil {
		track.DurationMs = probe.DurationMs
		track.SampleRate = probe.SampleRate
		track.Channels = probe.Channels
		track.Bitrate = probe.Bitrate
		track.CodecName = probe.CodecName
	} else {
		logger.Warn("Probe failed", logger.String("path", path), logger.ErrorField(err))
	}

	if err := s.store.Tracks.SaveTrack(track, nil); err != nil {
		logger.Warn("Cannot save track", logger.String("path", path), logger.ErrorField(err))
		return
	}
	if existing == nil {
		result.Added++
	} else {
		result.Updated++
	}
}

// readMetadata fills the tag-derived fields, falling back to the filename for
// the title.
func (s *Scanner) readMetadata(path string, track *model.Track) {
	track.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		logger.Debug("No readable tags", logger.String("path", path), logger.ErrorField(err))
		return
	}

	if m.Title() != "" {
		track.Title = m.Title()
	}
	track.ArtistName = m.Artist()
	track.AlbumTitle = m.Album()
	track.AlbumArtistName = m.AlbumArtist()
	track.Year = int64(m.Year())
	n, _ := m.Track()
	track.TrackNumber = int64(n)
	d, _ := m.Disc()
	track.DiscNumber = int64(d)
}

// markMissing flags tracks under root that the walk did not see. The prefix
// filter carries a trailing separator so a sibling folder sharing the prefix
// ("/music/ab" next to "/music/a") is not swept.
func (s *Scanner) markMissing(root string, seen map[string]bool, result *Result) error {
	prefix := root
	if !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix += string(os.PathSeparator)
	}
	tracks, err := s.store.Tracks.GetTracks(&repository.QueryArgs{PathFilter: prefix})
	if err != nil {
		return err
	}
	for _, track := range tracks {
		if seen[track.Filepath] || track.IsMissing {
			continue
		}
		if err := s.store.Tracks.UpdateMissingFlag(track.ID, true); err != nil {
			return err
		}
		result.Missing++
	}
	return nil
}
