package repository

import (
	"database/sql"
	"sync"

	"gorm.io/gorm"
)

// Store is the authoritative library of tracks, folders, tags, working sets,
// mixes and mix tracks. All operations serialise on one lock; concurrent
// readers are served by the connection's write-ahead logging.
type Store struct {
	mu      sync.Mutex
	db      *sql.DB
	lastErr string

	Tracks      TrackRepository
	Tags        TagManager
	Mixes       MixManager
	WorkingSets WorkingSetManager
	Folders     FolderManager
}

// NewStore wires the sub-managers over an initialised database handle. The
// GORM handle serves the folder manager; it may be nil when folders are not
// needed (tests).
func NewStore(conn *sql.DB, gormDB *gorm.DB) *Store {
	s := &Store{db: conn}
	s.Tracks = &sqliteTrackRepository{s: s}
	s.Tags = &sqliteTagManager{s: s}
	s.Mixes = &sqliteMixManager{s: s}
	s.WorkingSets = &sqliteWorkingSetManager{s: s}
	s.Folders = &gormFolderManager{s: s, db: gormDB}
	return s
}

// LastError returns the message of the most recent failed operation.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// setErr records an operation failure for LastError. Callers hold s.mu.
func (s *Store) setErr(err error) error {
	if err != nil {
		s.lastErr = err.Error()
	}
	return err
}
