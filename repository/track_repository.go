package repository

import (
	"database/sql"
	"time"

	"jucyaudio/logger"
	"jucyaudio/model"
)

// TrackRepository defines the track data operations of the library store.
type TrackRepository interface {
	// SaveTrack inserts the track when its ID is UnsavedID, otherwise
	// updates the row by ID. On insert the new ID is assigned into the
	// caller's struct. When tagIDs is non-nil the track's tag associations
	// are replaced with it in the same transaction.
	SaveTrack(track *model.Track, tagIDs []int64) error
	GetTrackByID(id int64) (*model.Track, error)
	GetTrackByFilepath(path string) (*model.Track, error)
	GetTracks(args *QueryArgs) ([]*model.Track, error)
	GetTotalTrackCount(args *QueryArgs) (int64, error)
	UpdateRating(trackID int64, rating int64) error
	UpdateLikedStatus(trackID int64, liked int64) error
	// IncrementPlayCount bumps play_count and stamps last_played with now.
	IncrementPlayCount(trackID int64) error
	UpdateUserNotes(trackID int64, notes string) error
	UpdateFilesystemInfo(trackID int64, mtimeMs int64, sizeBytes int64) error
	UpdateMissingFlag(trackID int64, missing bool) error
}

// sqliteTrackRepository implements TrackRepository over the store connection.
type sqliteTrackRepository struct {
	s *Store
}

const trackColumns = `t.track_id, t.folder_id, t.filepath, t.last_modified_fs, t.filesize_bytes,
	t.date_added, t.last_scanned, t.title, t.artist_name, t.album_title, t.album_artist_name,
	t.track_number, t.disc_number, t.year, t.duration, t.samplerate, t.channels, t.bitrate,
	t.codec_name, t.bpm, t.intro_end, t.outro_start, t.key_string, t.beat_locations_json,
	t.rating, t.liked_status, t.play_count, t.last_played, t.internal_content_hash,
	t.user_notes, t.is_missing`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// nullableID binds a zero id as NULL so an optional foreign key stays unset
// instead of pointing at a row that cannot exist.
func nullableID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}

func scanTrack(row rowScanner) (*model.Track, error) {
	track := &model.Track{}
	var folderID sql.NullInt64
	err := row.Scan(
		&track.ID, &folderID, &track.Filepath, &track.LastModifiedFs, &track.FileSizeBytes,
		&track.DateAdded, &track.LastScanned, &track.Title, &track.ArtistName, &track.AlbumTitle,
		&track.AlbumArtistName, &track.TrackNumber, &track.DiscNumber, &track.Year,
		&track.DurationMs, &track.SampleRate, &track.Channels, &track.Bitrate, &track.CodecName,
		&track.Bpm, &track.IntroEndMs, &track.OutroStartMs, &track.KeyString,
		&track.BeatLocationsJSON, &track.Rating, &track.LikedStatus, &track.PlayCount,
		&track.LastPlayed, &track.ContentHash, &track.UserNotes, &track.IsMissing,
	)
	if err != nil {
		return nil, err
	}
	track.FolderID = folderID.Int64
	return track, nil
}

// SaveTrack inserts or updates a track and replaces its tag associations.
func (r *sqliteTrackRepository) SaveTrack(track *model.Track, tagIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tx, err := r.s.db.Begin()
	if err != nil {
		return r.s.setErr(classify(err, "SaveTrack begin"))
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	if track.ID == model.UnsavedID || track.ID == 0 {
		if track.DateAdded == 0 {
			track.DateAdded = now
		}
		res, err := tx.Exec(`INSERT INTO Tracks (
			folder_id, filepath, last_modified_fs, filesize_bytes, date_added, last_scanned,
			title, artist_name, album_title, album_artist_name, track_number, disc_number, year,
			duration, samplerate, channels, bitrate, codec_name, bpm, intro_end, outro_start,
			key_string, beat_locations_json, rating, liked_status, play_count, last_played,
			internal_content_hash, user_notes, is_missing
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			nullableID(track.FolderID), track.Filepath, track.LastModifiedFs, track.FileSizeBytes,
			track.DateAdded, track.LastScanned, track.Title, track.ArtistName, track.AlbumTitle,
			track.AlbumArtistName, track.TrackNumber, track.DiscNumber, track.Year,
			track.DurationMs, track.SampleRate, track.Channels, track.Bitrate, track.CodecName,
			track.Bpm, track.IntroEndMs, track.OutroStartMs, track.KeyString,
			track.BeatLocationsJSON, track.Rating, track.LikedStatus, track.PlayCount,
			track.LastPlayed, track.ContentHash, track.UserNotes, track.IsMissing)
		if err != nil {
			return r.s.setErr(classify(err, "SaveTrack insert"))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return r.s.setErr(classify(err, "SaveTrack insert id"))
		}
		track.ID = id
	} else {
		res, err := tx.Exec(`UPDATE Tracks SET
			folder_id=?, filepath=?, last_modified_fs=?, filesize_bytes=?, date_added=?,
			last_scanned=?, title=?, artist_name=?, album_title=?, album_artist_name=?,
			track_number=?, disc_number=?, year=?, duration=?, samplerate=?, channels=?,
			bitrate=?, codec_name=?, bpm=?, intro_end=?, outro_start=?, key_string=?,
			beat_locations_json=?, rating=?, liked_status=?, play_count=?, last_played=?,
			internal_content_hash=?, user_notes=?, is_missing=?
			WHERE track_id=?`,
			nullableID(track.FolderID), track.Filepath, track.LastModifiedFs, track.FileSizeBytes,
			track.DateAdded, track.LastScanned, track.Title, track.ArtistName, track.AlbumTitle,
			track.AlbumArtistName, track.TrackNumber, track.DiscNumber, track.Year,
			track.DurationMs, track.SampleRate, track.Channels, track.Bitrate, track.CodecName,
			track.Bpm, track.IntroEndMs, track.OutroStartMs, track.KeyString,
			track.BeatLocationsJSON, track.Rating, track.LikedStatus, track.PlayCount,
			track.LastPlayed, track.ContentHash, track.UserNotes, track.IsMissing, track.ID)
		if err != nil {
			return r.s.setErr(classify(err, "SaveTrack update"))
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			return r.s.setErr(storeErrorf(ErrorNotFound, "SaveTrack: no track with id %d", track.ID))
		}
	}

	if tagIDs != nil {
		if _, err := tx.Exec(`DELETE FROM TrackTags WHERE track_id = ?`, track.ID); err != nil {
			return r.s.setErr(classify(err, "SaveTrack clear tags"))
		}
		for _, tagID := range tagIDs {
			if _, err := tx.Exec(`INSERT OR IGNORE INTO TrackTags (track_id, tag_id) VALUES (?, ?)`,
				track.ID, tagID); err != nil {
				return r.s.setErr(classify(err, "SaveTrack tag insert"))
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return r.s.setErr(classify(err, "SaveTrack commit"))
	}
	logger.Debug("Track saved", logger.Int64("trackId", track.ID), logger.String("path", track.Filepath))
	return nil
}

// GetTrackByID retrieves a track by its ID. Returns (nil, nil) when absent.
func (r *sqliteTrackRepository) GetTrackByID(id int64) (*model.Track, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row := r.s.db.QueryRow(`SELECT `+trackColumns+` FROM Tracks t WHERE t.track_id = ?`, id)
	track, err := scanTrack(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, r.s.setErr(classify(err, "GetTrackByID"))
	}
	return track, nil
}

// GetTrackByFilepath retrieves a track by its unique path. Returns (nil, nil)
// when absent.
func (r *sqliteTrackRepository) GetTrackByFilepath(path string) (*model.Track, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row := r.s.db.QueryRow(`SELECT `+trackColumns+` FROM Tracks t WHERE t.filepath = ?`, path)
	track, err := scanTrack(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, r.s.setErr(classify(err, "GetTrackByFilepath"))
	}
	return track, nil
}

// GetTracks returns the filtered, sorted and optionally paged track listing.
func (r *sqliteTrackRepository) GetTracks(args *QueryArgs) ([]*model.Track, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if args == nil {
		args = &QueryArgs{}
	}
	if args.Paged && args.Offset%PageSize != 0 {
		return nil, r.s.setErr(storeErrorf(ErrorConstraintFailed,
			"GetTracks: offset %d is not a multiple of the page size %d", args.Offset, PageSize))
	}

	filter, params := buildTrackFilter(args)
	query := `SELECT ` + trackColumns + ` ` + filter + buildOrderBy(args)
	if args.Paged {
		query += " LIMIT ? OFFSET ?"
		params = append(params, int64(PageSize), args.Offset)
	}

	rows, err := r.s.db.Query(query, params...)
	if err != nil {
		return nil, r.s.setErr(classify(err, "GetTracks"))
	}
	defer rows.Close()

	tracks := make([]*model.Track, 0)
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, r.s.setErr(classify(err, "GetTracks scan"))
		}
		tracks = append(tracks, track)
	}
	if err = rows.Err(); err != nil {
		return nil, r.s.setErr(classify(err, "GetTracks rows"))
	}
	return tracks, nil
}

// GetTotalTrackCount counts the rows the same filters would return.
func (r *sqliteTrackRepository) GetTotalTrackCount(args *QueryArgs) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if args == nil {
		args = &QueryArgs{}
	}
	filter, params := buildTrackFilter(args)
	var count int64
	if err := r.s.db.QueryRow(`SELECT COUNT(*) `+filter, params...).Scan(&count); err != nil {
		return 0, r.s.setErr(classify(err, "GetTotalTrackCount"))
	}
	return count, nil
}

// singleUpdate executes one UPDATE statement and maps zero affected rows to
// not-found. Callers hold s.mu.
func (r *sqliteTrackRepository) singleUpdate(context, query string, params ...interface{}) error {
	res, err := r.s.db.Exec(query, params...)
	if err != nil {
		return r.s.setErr(classify(err, context))
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return r.s.setErr(storeErrorf(ErrorNotFound, "%s: no such track", context))
	}
	return nil
}

func (r *sqliteTrackRepository) UpdateRating(trackID int64, rating int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.singleUpdate("UpdateRating",
		`UPDATE Tracks SET rating = ? WHERE track_id = ?`, rating, trackID)
}

func (r *sqliteTrackRepository) UpdateLikedStatus(trackID int64, liked int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.singleUpdate("UpdateLikedStatus",
		`UPDATE Tracks SET liked_status = ? WHERE track_id = ?`, liked, trackID)
}

func (r *sqliteTrackRepository) IncrementPlayCount(trackID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.singleUpdate("IncrementPlayCount",
		`UPDATE Tracks SET play_count = play_count + 1, last_played = ? WHERE track_id = ?`,
		time.Now().UnixMilli(), trackID)
}

func (r *sqliteTrackRepository) UpdateUserNotes(trackID int64, notes string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.singleUpdate("UpdateUserNotes",
		`UPDATE Tracks SET user_notes = ? WHERE track_id = ?`, notes, trackID)
}

func (r *sqliteTrackRepository) UpdateFilesystemInfo(trackID int64, mtimeMs int64, sizeBytes int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.singleUpdate("UpdateFilesystemInfo",
		`UPDATE Tracks SET last_modified_fs = ?, filesize_bytes = ? WHERE track_id = ?`,
		mtimeMs, sizeBytes, trackID)
}

func (r *sqliteTrackRepository) UpdateMissingFlag(trackID int64, missing bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.singleUpdate("UpdateMissingFlag",
		`UPDATE Tracks SET is_missing = ? WHERE track_id = ?`, missing, trackID)
}
