package db

import (
	"database/sql"
	"fmt"

	"jucyaudio/config"
	"jucyaudio/logger"

	_ "github.com/mattn/go-sqlite3" // sqlite driver
)

var DB *sql.DB

// SchemaVersion is written into SchemaInfo on first open.
const SchemaVersion = "1"

// ConnectDB opens the sqlite library database and applies the connection
// pragmas. Write-ahead logging allows concurrent readers while a background
// scan writes; foreign keys enforce the cascade deletes the schema declares.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", cfg.DBPath)

	var err error
	DB, err = sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to library database", logger.String("path", cfg.DBPath))
	return nil
}

// CloseDB closes the library database connection.
func CloseDB() error {
	if DB == nil {
		return nil
	}
	return DB.Close()
}

// InitDB creates the library schema and the secondary indices if they do not
// exist yet, and records the schema version.
func InitDB() error {
	return InitSchema(DB)
}

// InitSchema applies the schema on the given handle. Split out from InitDB so
// tests can run against their own connection.
func InitSchema(conn *sql.DB) error {
	for _, query := range schemaQueries {
		if _, err := conn.Exec(query); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}

	if _, err := conn.Exec(
		`INSERT INTO SchemaInfo (key, value) VALUES ('schema_version', ?)
		 ON CONFLICT(key) DO NOTHING`, SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	logger.Info("Library schema initialised", logger.String("version", SchemaVersion))
	return nil
}

var schemaQueries = []string{
	`CREATE TABLE IF NOT EXISTS Folders (
		folder_id    INTEGER PRIMARY KEY AUTOINCREMENT,
		fs_path      TEXT NOT NULL UNIQUE,
		num_files    INTEGER NOT NULL DEFAULT 0,
		total_bytes  INTEGER NOT NULL DEFAULT 0,
		last_scanned INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS Tracks (
		track_id             INTEGER PRIMARY KEY AUTOINCREMENT,
		folder_id            INTEGER REFERENCES Folders(folder_id) ON DELETE CASCADE,
		filepath             TEXT NOT NULL UNIQUE,
		last_modified_fs     INTEGER NOT NULL DEFAULT 0,
		filesize_bytes       INTEGER NOT NULL DEFAULT 0,
		date_added           INTEGER NOT NULL DEFAULT 0,
		last_scanned         INTEGER NOT NULL DEFAULT 0,
		title                TEXT NOT NULL DEFAULT '',
		artist_name          TEXT NOT NULL DEFAULT '',
		album_title          TEXT NOT NULL DEFAULT '',
		album_artist_name    TEXT NOT NULL DEFAULT '',
		track_number         INTEGER NOT NULL DEFAULT 0,
		disc_number          INTEGER NOT NULL DEFAULT 0,
		year                 INTEGER NOT NULL DEFAULT 0,
		duration             INTEGER NOT NULL DEFAULT 0,
		samplerate           INTEGER NOT NULL DEFAULT 0,
		channels             INTEGER NOT NULL DEFAULT 0,
		bitrate              INTEGER NOT NULL DEFAULT 0,
		codec_name           TEXT NOT NULL DEFAULT '',
		bpm                  INTEGER NOT NULL DEFAULT 0,
		intro_end            INTEGER NOT NULL DEFAULT 0,
		outro_start          INTEGER NOT NULL DEFAULT 0,
		key_string           TEXT NOT NULL DEFAULT '',
		beat_locations_json  TEXT NOT NULL DEFAULT '',
		rating               INTEGER NOT NULL DEFAULT 0,
		liked_status         INTEGER NOT NULL DEFAULT 0,
		play_count           INTEGER NOT NULL DEFAULT 0,
		last_played          INTEGER NOT NULL DEFAULT 0,
		internal_content_hash TEXT NOT NULL DEFAULT '',
		user_notes           TEXT NOT NULL DEFAULT '',
		is_missing           INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS Tags (
		tag_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name   TEXT NOT NULL UNIQUE COLLATE NOCASE
	)`,
	`CREATE TABLE IF NOT EXISTS TrackTags (
		track_id INTEGER NOT NULL REFERENCES Tracks(track_id) ON DELETE CASCADE,
		tag_id   INTEGER NOT NULL REFERENCES Tags(tag_id) ON DELETE CASCADE,
		PRIMARY KEY (track_id, tag_id)
	)`,
	`CREATE TABLE IF NOT EXISTS WorkingSets (
		ws_id     INTEGER PRIMARY KEY AUTOINCREMENT,
		name      TEXT NOT NULL UNIQUE COLLATE NOCASE,
		timestamp INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS WorkingSetTracks (
		ws_id    INTEGER NOT NULL REFERENCES WorkingSets(ws_id) ON DELETE CASCADE,
		track_id INTEGER NOT NULL REFERENCES Tracks(track_id) ON DELETE CASCADE,
		PRIMARY KEY (ws_id, track_id)
	)`,
	`CREATE TABLE IF NOT EXISTS Mixes (
		mix_id       INTEGER PRIMARY KEY AUTOINCREMENT,
		name         TEXT NOT NULL UNIQUE COLLATE NOCASE,
		timestamp    INTEGER NOT NULL DEFAULT 0,
		track_count  INTEGER NOT NULL DEFAULT 0,
		total_length INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS MixTracks (
		mix_id          INTEGER NOT NULL REFERENCES Mixes(mix_id) ON DELETE CASCADE,
		track_id        INTEGER NOT NULL REFERENCES Tracks(track_id) ON DELETE CASCADE,
		order_in_mix    INTEGER NOT NULL DEFAULT 0,
		envelopePoints  TEXT NOT NULL DEFAULT '',
		mix_start_time  INTEGER NOT NULL DEFAULT 0,
		mix_end_time    INTEGER NOT NULL DEFAULT 0,
		cutoff_time     INTEGER NOT NULL DEFAULT 0,
		silence_start   INTEGER NOT NULL DEFAULT 0,
		fade_in_start   INTEGER NOT NULL DEFAULT 0,
		fade_in_end     INTEGER NOT NULL DEFAULT 0,
		fade_out_start  INTEGER NOT NULL DEFAULT 0,
		fade_out_end    INTEGER NOT NULL DEFAULT 0,
		volume_start    INTEGER NOT NULL DEFAULT 1000,
		volume_end      INTEGER NOT NULL DEFAULT 1000,
		crossfade_ms    INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (mix_id, track_id)
	)`,
	`CREATE TABLE IF NOT EXISTS SchemaInfo (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tracks_filepath ON Tracks(filepath)`,
	`CREATE INDEX IF NOT EXISTS idx_tracks_folder ON Tracks(folder_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tracks_artist ON Tracks(artist_name COLLATE NOCASE)`,
	`CREATE INDEX IF NOT EXISTS idx_tracks_album ON Tracks(album_title COLLATE NOCASE)`,
	`CREATE INDEX IF NOT EXISTS idx_tracks_title ON Tracks(title COLLATE NOCASE)`,
	`CREATE INDEX IF NOT EXISTS idx_tracks_bpm ON Tracks(bpm)`,
	`CREATE INDEX IF NOT EXISTS idx_tracks_rating ON Tracks(rating)`,
	`CREATE INDEX IF NOT EXISTS idx_tracks_liked ON Tracks(liked_status)`,
	`CREATE INDEX IF NOT EXISTS idx_tracktags_tag ON TrackTags(tag_id)`,
}
