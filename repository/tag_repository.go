package repository

import (
	"strings"

	"jucyaudio/model"
)

// TagManager maintains the tag table and the track-tag associations.
type TagManager interface {
	// GetOrCreateTagID returns the id of an existing case-insensitive
	// match for name. When createIfMissing is set a missing tag is
	// inserted and its new id returned; otherwise the call reports
	// not-found.
	GetOrCreateTagID(name string, createIfMissing bool) (int64, error)
	// UpdateTrackTags replaces all of the track's tag associations
	// atomically.
	UpdateTrackTags(trackID int64, tagIDs []int64) error
	GetTrackTags(trackID int64) ([]int64, error)
	ListTags() ([]model.Tag, error)
}

// sqliteTagManager keeps a lazily populated two-way cache {id <-> name}.
// The cache is guarded by the store lock like everything else.
type sqliteTagManager struct {
	s *Store

	loaded   bool
	byID     map[int64]string
	byLCName map[string]int64
}

// loadCacheLocked fills the cache on first use. Callers hold s.mu.
func (m *sqliteTagManager) loadCacheLocked() error {
	if m.loaded {
		return nil
	}
	rows, err := m.s.db.Query(`SELECT tag_id, name FROM Tags`)
	if err != nil {
		return classify(err, "tag cache load")
	}
	defer rows.Close()

	m.byID = make(map[int64]string)
	m.byLCName = make(map[string]int64)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return classify(err, "tag cache scan")
		}
		m.byID[id] = name
		m.byLCName[strings.ToLower(name)] = id
	}
	if err := rows.Err(); err != nil {
		return classify(err, "tag cache rows")
	}
	m.loaded = true
	return nil
}

func (m *sqliteTagManager) GetOrCreateTagID(name string, createIfMissing bool) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if err := m.loadCacheLocked(); err != nil {
		return 0, m.s.setErr(err)
	}

	if id, ok := m.byLCName[strings.ToLower(name)]; ok {
		return id, nil
	}
	if !createIfMissing {
		return 0, m.s.setErr(storeErrorf(ErrorNotFound, "GetOrCreateTagID: no tag named %q", name))
	}

	res, err := m.s.db.Exec(`INSERT INTO Tags (name) VALUES (?)`, name)
	if err != nil {
		return 0, m.s.setErr(classify(err, "GetOrCreateTagID insert"))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, m.s.setErr(classify(err, "GetOrCreateTagID insert id"))
	}
	m.byID[id] = name
	m.byLCName[strings.ToLower(name)] = id
	return id, nil
}

func (m *sqliteTagManager) UpdateTrackTags(trackID int64, tagIDs []int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	tx, err := m.s.db.Begin()
	if err != nil {
		return m.s.setErr(classify(err, "UpdateTrackTags begin"))
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM TrackTags WHERE track_id = ?`, trackID); err != nil {
		return m.s.setErr(classify(err, "UpdateTrackTags clear"))
	}
	for _, tagID := range tagIDs {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO TrackTags (track_id, tag_id) VALUES (?, ?)`,
			trackID, tagID); err != nil {
			return m.s.setErr(classify(err, "UpdateTrackTags insert"))
		}
	}
	if err := tx.Commit(); err != nil {
		return m.s.setErr(classify(err, "UpdateTrackTags commit"))
	}
	return nil
}

func (m *sqliteTagManager) GetTrackTags(trackID int64) ([]int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	rows, err := m.s.db.Query(`SELECT tag_id FROM TrackTags WHERE track_id = ? ORDER BY tag_id`, trackID)
	if err != nil {
		return nil, m.s.setErr(classify(err, "GetTrackTags"))
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, m.s.setErr(classify(err, "GetTrackTags scan"))
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, m.s.setErr(classify(err, "GetTrackTags rows"))
	}
	return ids, nil
}

func (m *sqliteTagManager) ListTags() ([]model.Tag, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if err := m.loadCacheLocked(); err != nil {
		return nil, m.s.setErr(err)
	}
	tags := make([]model.Tag, 0, len(m.byID))
	for id, name := range m.byID {
		tags = append(tags, model.Tag{ID: id, Name: name})
	}
	return tags, nil
}
