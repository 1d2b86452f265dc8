package db

import "gorm.io/gorm"

// File 定义了上传附件的元数据模型
type File struct {
	gorm.Model
	SiteID          uint   `gorm:"not null;index"`
	StorageLocation string `gorm:"not null"`
	Path            string `gorm:"not null"`
}

// PostFile is the post↔file join row. DisplayName overrides the file's name
// for the owning post and must survive when the link itself is unchanged.
type PostFile struct {
	PostID      uint `gorm:"primaryKey"`
	FileID      uint `gorm:"primaryKey"`
	DisplayName string
}
