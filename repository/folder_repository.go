package repository

import (
	"errors"

	"gorm.io/gorm"

	"jucyaudio/logger"
	"jucyaudio/model"
)

// FolderManager is simple CRUD over the folder table.
type FolderManager interface {
	CreateFolder(folder *model.Folder) error
	GetFolderByPath(path string) (*model.Folder, error)
	GetFolderByID(id int64) (*model.Folder, error)
	ListFolders() ([]model.Folder, error)
	// UpdateFolder persists the counts and last-scanned timestamp written
	// by the scanner.
	UpdateFolder(folder *model.Folder) error
	// RemoveFolder cascades to all tracks under the folder.
	RemoveFolder(id int64) error
}

// gormFolderManager implements FolderManager on the GORM handle.
type gormFolderManager struct {
	s  *Store
	db *gorm.DB
}

func (m *gormFolderManager) CreateFolder(folder *model.Folder) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if err := m.db.Create(folder).Error; err != nil {
		return m.s.setErr(storeErrorf(ErrorDB, "CreateFolder: %v", err))
	}
	logger.Debug("Folder created", logger.Int64("folderId", folder.ID), logger.String("path", folder.FsPath))
	return nil
}

func (m *gormFolderManager) GetFolderByPath(path string) (*model.Folder, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	var folder model.Folder
	err := m.db.Where("fs_path = ?", path).First(&folder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, m.s.setErr(storeErrorf(ErrorDB, "GetFolderByPath: %v", err))
	}
	return &folder, nil
}

func (m *gormFolderManager) GetFolderByID(id int64) (*model.Folder, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	var folder model.Folder
	err := m.db.First(&folder, "folder_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, m.s.setErr(storeErrorf(ErrorDB, "GetFolderByID: %v", err))
	}
	return &folder, nil
}

func (m *gormFolderManager) ListFolders() ([]model.Folder, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	folders := make([]model.Folder, 0)
	if err := m.db.Order("fs_path").Find(&folders).Error; err != nil {
		return nil, m.s.setErr(storeErrorf(ErrorDB, "ListFolders: %v", err))
	}
	return folders, nil
}

func (m *gormFolderManager) UpdateFolder(folder *model.Folder) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	res := m.db.Model(&model.Folder{}).Where("folder_id = ?", folder.ID).Updates(map[string]interface{}{
		"num_files":    folder.NumFiles,
		"total_bytes":  folder.TotalBytes,
		"last_scanned": folder.LastScanned,
	})
	if res.Error != nil {
		return m.s.setErr(storeErrorf(ErrorDB, "UpdateFolder: %v", res.Error))
	}
	if res.RowsAffected == 0 {
		return m.s.setErr(storeErrorf(ErrorNotFound, "UpdateFolder: no folder with id %d", folder.ID))
	}
	return nil
}

func (m *gormFolderManager) RemoveFolder(id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	res := m.db.Delete(&model.Folder{}, "folder_id = ?", id)
	if res.Error != nil {
		return m.s.setErr(storeErrorf(ErrorDB, "RemoveFolder: %v", res.Error))
	}
	if res.RowsAffected == 0 {
		return m.s.setErr(storeErrorf(ErrorNotFound, "RemoveFolder: no folder with id %d", id))
	}
	logger.Info("Folder removed", logger.Int64("folderId", id))
	return nil
}
