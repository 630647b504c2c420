package repository

import (
	"time"

	"jucyaudio/logger"
	"jucyaudio/model"
)

// WorkingSetManager maintains the named, unordered track selections.
type WorkingSetManager interface {
	// CreateWorkingSetFromQuery inserts a working set and populates its
	// membership from the query result inside one transaction.
	CreateWorkingSetFromQuery(args *QueryArgs, name string) (*model.WorkingSet, error)
	CreateWorkingSetFromTrackIDs(trackIDs []int64, name string) (*model.WorkingSet, error)
	AddToWorkingSet(wsID int64, trackIDs ...int64) error
	RemoveFromWorkingSet(wsID int64, trackIDs ...int64) error
	ListWorkingSets() ([]model.WorkingSet, error)
	RemoveWorkingSet(id int64) error
}

type sqliteWorkingSetManager struct {
	s *Store
}

func (m *sqliteWorkingSetManager) CreateWorkingSetFromQuery(args *QueryArgs, name string) (*model.WorkingSet, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	tx, err := m.s.db.Begin()
	if err != nil {
		return nil, m.s.setErr(classify(err, "CreateWorkingSetFromQuery begin"))
	}
	defer tx.Rollback()

	ws := &model.WorkingSet{Name: name, Timestamp: time.Now().UnixMilli()}
	res, err := tx.Exec(`INSERT INTO WorkingSets (name, timestamp) VALUES (?, ?)`, ws.Name, ws.Timestamp)
	if err != nil {
		return nil, m.s.setErr(classify(err, "CreateWorkingSetFromQuery insert"))
	}
	ws.ID, err = res.LastInsertId()
	if err != nil {
		return nil, m.s.setErr(classify(err, "CreateWorkingSetFromQuery insert id"))
	}

	if args == nil {
		args = &QueryArgs{}
	}
	filter, params := buildTrackFilter(args)
	params = append([]interface{}{ws.ID}, params...)
	if _, err := tx.Exec(`INSERT INTO WorkingSetTracks (ws_id, track_id)
		SELECT ?, t.track_id `+filter, params...); err != nil {
		return nil, m.s.setErr(classify(err, "CreateWorkingSetFromQuery populate"))
	}

	if err := tx.Commit(); err != nil {
		return nil, m.s.setErr(classify(err, "CreateWorkingSetFromQuery commit"))
	}
	logger.Info("Working set created from query", logger.Int64("wsId", ws.ID), logger.String("name", name))
	return ws, nil
}

func (m *sqliteWorkingSetManager) CreateWorkingSetFromTrackIDs(trackIDs []int64, name string) (*model.WorkingSet, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	tx, err := m.s.db.Begin()
	if err != nil {
		return nil, m.s.setErr(classify(err, "CreateWorkingSetFromTrackIDs begin"))
	}
	defer tx.Rollback()

	ws := &model.WorkingSet{Name: name, Timestamp: time.Now().UnixMilli()}
	res, err := tx.Exec(`INSERT INTO WorkingSets (name, timestamp) VALUES (?, ?)`, ws.Name, ws.Timestamp)
	if err != nil {
		return nil, m.s.setErr(classify(err, "CreateWorkingSetFromTrackIDs insert"))
	}
	ws.ID, err = res.LastInsertId()
	if err != nil {
		return nil, m.s.setErr(classify(err, "CreateWorkingSetFromTrackIDs insert id"))
	}

	for _, trackID := range trackIDs {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO WorkingSetTracks (ws_id, track_id) VALUES (?, ?)`,
			ws.ID, trackID); err != nil {
			return nil, m.s.setErr(classify(err, "CreateWorkingSetFromTrackIDs member"))
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, m.s.setErr(classify(err, "CreateWorkingSetFromTrackIDs commit"))
	}
	logger.Info("Working set created", logger.Int64("wsId", ws.ID),
		logger.String("name", name), logger.Int("tracks", len(trackIDs)))
	return ws, nil
}

func (m *sqliteWorkingSetManager) AddToWorkingSet(wsID int64, trackIDs ...int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	tx, err := m.s.db.Begin()
	if err != nil {
		return m.s.setErr(classify(err, "AddToWorkingSet begin"))
	}
	defer tx.Rollback()

	for _, trackID := range trackIDs {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO WorkingSetTracks (ws_id, track_id) VALUES (?, ?)`,
			wsID, trackID); err != nil {
			return m.s.setErr(classify(err, "AddToWorkingSet"))
		}
	}
	if err := tx.Commit(); err != nil {
		return m.s.setErr(classify(err, "AddToWorkingSet commit"))
	}
	return nil
}

func (m *sqliteWorkingSetManager) RemoveFromWorkingSet(wsID int64, trackIDs ...int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	tx, err := m.s.db.Begin()
	if err != nil {
		return m.s.setErr(classify(err, "RemoveFromWorkingSet begin"))
	}
	defer tx.Rollback()

	for _, trackID := range trackIDs {
		if _, err := tx.Exec(`DELETE FROM WorkingSetTracks WHERE ws_id = ? AND track_id = ?`,
			wsID, trackID); err != nil {
			return m.s.setErr(classify(err, "RemoveFromWorkingSet"))
		}
	}
	if err := tx.Commit(); err != nil {
		return m.s.setErr(classify(err, "RemoveFromWorkingSet commit"))
	}
	return nil
}

func (m *sqliteWorkingSetManager) ListWorkingSets() ([]model.WorkingSet, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	rows, err := m.s.db.Query(`SELECT ws_id, name, timestamp FROM WorkingSets ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, m.s.setErr(classify(err, "ListWorkingSets"))
	}
	defer rows.Close()

	sets := make([]model.WorkingSet, 0)
	for rows.Next() {
		var ws model.WorkingSet
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.Timestamp); err != nil {
			return nil, m.s.setErr(classify(err, "ListWorkingSets scan"))
		}
		sets = append(sets, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, m.s.setErr(classify(err, "ListWorkingSets rows"))
	}
	return sets, nil
}

func (m *sqliteWorkingSetManager) RemoveWorkingSet(id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	res, err := m.s.db.Exec(`DELETE FROM WorkingSets WHERE ws_id = ?`, id)
	if err != nil {
		return m.s.setErr(classify(err, "RemoveWorkingSet"))
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return m.s.setErr(storeErrorf(ErrorNotFound, "RemoveWorkingSet: no working set with id %d", id))
	}
	return nil
}
