package repository

import (
	"sync/atomic"

	"jucyaudio/logger"
)

// maintenanceStatements run in order during RunMaintenance. VACUUM reclaims
// space freed by cascade deletes; the checkpoint folds the WAL back into the
// main file.
var maintenanceStatements = []string{
	"ANALYZE",
	"PRAGMA optimize",
	"PRAGMA wal_checkpoint(TRUNCATE)",
	"VACUUM",
}

// RunMaintenance performs index optimisation and space reclamation. The
// cancel flag is polled between statements; a set flag stops the run without
// error.
func (s *Store) RunMaintenance(cancel *atomic.Bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stmt := range maintenanceStatements {
		if cancel != nil && cancel.Load() {
			logger.Info("Library maintenance cancelled", logger.String("before", stmt))
			return nil
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return s.setErr(classify(err, "RunMaintenance "+stmt))
		}
		logger.Debug("Maintenance statement completed", logger.String("stmt", stmt))
	}
	logger.Info("Library maintenance finished")
	return nil
}
