package repository

import (
	"encoding/json"
	"time"

	"jucyaudio/logger"
	"jucyaudio/model"
)

// MixManager maintains the mix headers and their ordered mix-track rows.
type MixManager interface {
	// GetMixes returns mix summaries. Track count and total length are
	// derived from the child rows. Search terms of args match the mix
	// name; other filters are ignored.
	GetMixes(args *QueryArgs) ([]model.Mix, error)
	GetMixByID(id int64) (*model.Mix, error)
	// GetMixTracks returns the child rows ordered by order_in_mix.
	GetMixTracks(mixID int64) ([]model.MixTrack, error)
	// CreateOrUpdateMix inserts a new mix when mix.ID is zero (assigning
	// the id), otherwise replaces the existing mix's child rows and
	// header. The timestamp is set to now on every write.
	CreateOrUpdateMix(mix *model.Mix, tracks []model.MixTrack) error
	RemoveMix(id int64) error
}

type sqliteMixManager struct {
	s *Store
}

// marshalEnvelope renders the envelope column value. An empty envelope is
// stored as the empty string, matching what the legacy-fade path expects.
func marshalEnvelope(points []model.EnvelopePoint) (string, error) {
	if len(points) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(points)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func unmarshalEnvelope(raw string) ([]model.EnvelopePoint, error) {
	if raw == "" {
		return nil, nil
	}
	var points []model.EnvelopePoint
	if err := json.Unmarshal([]byte(raw), &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (m *sqliteMixManager) GetMixes(args *QueryArgs) ([]model.Mix, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	query := `SELECT m.mix_id, m.name, m.timestamp,
		COUNT(mt.track_id),
		COALESCE(MAX(mt.mix_start_time + mt.cutoff_time), 0)
		FROM Mixes m LEFT JOIN MixTracks mt ON mt.mix_id = m.mix_id`
	var params []interface{}
	where := ""
	if args != nil {
		for _, term := range args.SearchTerms {
			if term == "" {
				continue
			}
			if where == "" {
				where = " WHERE"
			} else {
				where += " AND"
			}
			where += ` m.name LIKE ? ESCAPE '\'`
			params = append(params, "%"+escapeLike(term)+"%")
		}
	}
	query += where + ` GROUP BY m.mix_id, m.name, m.timestamp ORDER BY m.name COLLATE NOCASE, m.mix_id`

	rows, err := m.s.db.Query(query, params...)
	if err != nil {
		return nil, m.s.setErr(classify(err, "GetMixes"))
	}
	defer rows.Close()

	mixes := make([]model.Mix, 0)
	for rows.Next() {
		var mix model.Mix
		if err := rows.Scan(&mix.ID, &mix.Name, &mix.Timestamp, &mix.TrackCount, &mix.TotalLengthMs); err != nil {
			return nil, m.s.setErr(classify(err, "GetMixes scan"))
		}
		mixes = append(mixes, mix)
	}
	if err := rows.Err(); err != nil {
		return nil, m.s.setErr(classify(err, "GetMixes rows"))
	}
	return mixes, nil
}

// GetMixByID fetches one mix header. Returns (nil, nil) when absent.
func (m *sqliteMixManager) GetMixByID(id int64) (*model.Mix, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	row := m.s.db.QueryRow(`SELECT mix_id, name, timestamp, track_count, total_length
		FROM Mixes WHERE mix_id = ?`, id)
	mix := &model.Mix{}
	if err := row.Scan(&mix.ID, &mix.Name, &mix.Timestamp, &mix.TrackCount, &mix.TotalLengthMs); err != nil {
		se := classify(err, "GetMixByID")
		if se.Status == ErrorNotFound {
			return nil, nil
		}
		return nil, m.s.setErr(se)
	}
	return mix, nil
}

func (m *sqliteMixManager) GetMixTracks(mixID int64) ([]model.MixTrack, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	rows, err := m.s.db.Query(`SELECT mix_id, track_id, order_in_mix, envelopePoints,
		mix_start_time, mix_end_time, cutoff_time, silence_start,
		fade_in_start, fade_in_end, fade_out_start, fade_out_end,
		volume_start, volume_end, crossfade_ms
		FROM MixTracks WHERE mix_id = ? ORDER BY order_in_mix`, mixID)
	if err != nil {
		return nil, m.s.setErr(classify(err, "GetMixTracks"))
	}
	defer rows.Close()

	tracks := make([]model.MixTrack, 0)
	for rows.Next() {
		var mt model.MixTrack
		var envelopeRaw string
		if err := rows.Scan(&mt.MixID, &mt.TrackID, &mt.OrderInMix, &envelopeRaw,
			&mt.MixStartTimeMs, &mt.MixEndTimeMs, &mt.CutoffTimeMs, &mt.SilenceStartMs,
			&mt.FadeInStartMs, &mt.FadeInEndMs, &mt.FadeOutStartMs, &mt.FadeOutEndMs,
			&mt.VolumeStart, &mt.VolumeEnd, &mt.CrossfadeMs); err != nil {
			return nil, m.s.setErr(classify(err, "GetMixTracks scan"))
		}
		mt.Envelope, err = unmarshalEnvelope(envelopeRaw)
		if err != nil {
			return nil, m.s.setErr(storeErrorf(ErrorDB,
				"GetMixTracks: bad envelope JSON for mix %d track %d: %v", mixID, mt.TrackID, err))
		}
		tracks = append(tracks, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, m.s.setErr(classify(err, "GetMixTracks rows"))
	}
	return tracks, nil
}

func (m *sqliteMixManager) CreateOrUpdateMix(mix *model.Mix, tracks []model.MixTrack) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	tx, err := m.s.db.Begin()
	if err != nil {
		return m.s.setErr(classify(err, "CreateOrUpdateMix begin"))
	}
	defer tx.Rollback()

	mix.Timestamp = time.Now().UnixMilli()
	if mix.ID == 0 {
		res, err := tx.Exec(`INSERT INTO Mixes (name, timestamp) VALUES (?, ?)`,
			mix.Name, mix.Timestamp)
		if err != nil {
			return m.s.setErr(classify(err, "CreateOrUpdateMix insert"))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return m.s.setErr(classify(err, "CreateOrUpdateMix insert id"))
		}
		mix.ID = id
	} else {
		if _, err := tx.Exec(`DELETE FROM MixTracks WHERE mix_id = ?`, mix.ID); err != nil {
			return m.s.setErr(classify(err, "CreateOrUpdateMix clear tracks"))
		}
		res, err := tx.Exec(`UPDATE Mixes SET name = ?, timestamp = ? WHERE mix_id = ?`,
			mix.Name, mix.Timestamp, mix.ID)
		if err != nil {
			return m.s.setErr(classify(err, "CreateOrUpdateMix update"))
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			return m.s.setErr(storeErrorf(ErrorNotFound, "CreateOrUpdateMix: no mix with id %d", mix.ID))
		}
	}

	var totalLength int64
	for i := range tracks {
		mt := &tracks[i]
		mt.MixID = mix.ID
		envelopeRaw, err := marshalEnvelope(mt.Envelope)
		if err != nil {
			return m.s.setErr(storeErrorf(ErrorGeneric,
				"CreateOrUpdateMix: cannot encode envelope for track %d: %v", mt.TrackID, err))
		}
		if _, err := tx.Exec(`INSERT INTO MixTracks (mix_id, track_id, order_in_mix,
			envelopePoints, mix_start_time, mix_end_time, cutoff_time, silence_start,
			fade_in_start, fade_in_end, fade_out_start, fade_out_end,
			volume_start, volume_end, crossfade_ms)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			mt.MixID, mt.TrackID, mt.OrderInMix, envelopeRaw,
			mt.MixStartTimeMs, mt.MixEndTimeMs, mt.CutoffTimeMs, mt.SilenceStartMs,
			mt.FadeInStartMs, mt.FadeInEndMs, mt.FadeOutStartMs, mt.FadeOutEndMs,
			mt.VolumeStart, mt.VolumeEnd, mt.CrossfadeMs); err != nil {
			return m.s.setErr(classify(err, "CreateOrUpdateMix track insert"))
		}
		if end := mt.MixStartTimeMs + mt.CutoffTimeMs; end > totalLength {
			totalLength = end
		}
	}

	mix.TrackCount = int64(len(tracks))
	mix.TotalLengthMs = totalLength
	if _, err := tx.Exec(`UPDATE Mixes SET track_count = ?, total_length = ? WHERE mix_id = ?`,
		mix.TrackCount, mix.TotalLengthMs, mix.ID); err != nil {
		return m.s.setErr(classify(err, "CreateOrUpdateMix totals"))
	}

	if err := tx.Commit(); err != nil {
		return m.s.setErr(classify(err, "CreateOrUpdateMix commit"))
	}
	logger.Info("Mix saved", logger.Int64("mixId", mix.ID),
		logger.String("name", mix.Name), logger.Int("tracks", len(tracks)))
	return nil
}

func (m *sqliteMixManager) RemoveMix(id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	res, err := m.s.db.Exec(`DELETE FROM Mixes WHERE mix_id = ?`, id)
	if err != nil {
		return m.s.setErr(classify(err, "RemoveMix"))
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return m.s.setErr(storeErrorf(ErrorNotFound, "RemoveMix: no mix with id %d", id))
	}
	return nil
}
