package model

// Folder is a scanned directory owning tracks by foreign key.
type Folder struct {
	ID          int64  `gorm:"column:folder_id;primaryKey" json:"id"`
	FsPath      string `gorm:"column:fs_path;unique" json:"fsPath"`
	NumFiles    int64  `gorm:"column:num_files" json:"numFiles"`
	TotalBytes  int64  `gorm:"column:total_bytes" json:"totalBytes"`
	LastScanned int64  `gorm:"column:last_scanned" json:"lastScanned"`
}

// TableName overrides the GORM table name to match the library schema.
func (Folder) TableName() string {
	return "Folders"
}
