package service

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/quillpress/quillpress/internal/config"
	"github.com/quillpress/quillpress/internal/db"
	"github.com/quillpress/quillpress/internal/storage"
)

var (
	ErrFileNotFound       = errors.New("file not found")
	ErrFilePayloadMissing = errors.New("file payload is required")
	ErrFileNotAttached    = errors.New("file is not attached to the post")
)

// FileService handles attachment intake and the post↔file pivot metadata.
type FileService struct {
	db    *gorm.DB
	store storage.Store
	cfg   config.AssetConfig
}

// FileUploadInput carries one uploaded attachment payload.
type FileUploadInput struct {
	Filename string
	Data     io.Reader
}

// FileListResult aggregates paginated files.
type FileListResult struct {
	Files      []db.File
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// NewFileService creates a FileService instance.
func NewFileService(gdb *gorm.DB, store storage.Store, cfg config.AssetConfig) *FileService {
	return &FileService{db: gdb, store: store, cfg: cfg}
}

// Upload expands the filename template, records the file metadata and writes
// the payload as one transaction.
func (s *FileService) Upload(siteID uint, input FileUploadInput) (*db.File, error) {
	if input.Data == nil || strings.TrimSpace(input.Filename) == "" {
		return nil, ErrFilePayloadMissing
	}

	location, err := storage.ParseLocation(s.cfg.StorageLocation)
	if err != nil {
		return nil, err
	}

	payload, err := io.ReadAll(input.Data)
	if err != nil {
		return nil, err
	}

	filename := buildFilename(s.cfg.FilenameFormat, input.Filename, time.Now())

	file := db.File{
		SiteID:          siteID,
		StorageLocation: string(location),
		Path:            filename,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&file).Error; err != nil {
			return err
		}
		return s.store.Write(location, assetPath(s.cfg.StoragePath, filename), bytes.NewReader(payload))
	}); err != nil {
		return nil, err
	}

	return &file, nil
}

// List returns the site's files, newest first.
func (s *FileService) List(siteID uint, page, perPage int) (*FileListResult, error) {
	result := &FileListResult{Page: page, PerPage: perPage}
	if result.Page <= 0 {
		result.Page = 1
	}
	if result.PerPage <= 0 {
		result.PerPage = 15
	}

	if err := s.db.Model(&db.File{}).Where("site_id = ?", siteID).Count(&result.Total).Error; err != nil {
		return nil, err
	}

	offset := (result.Page - 1) * result.PerPage
	if err := s.db.Where("site_id = ?", siteID).
		Order("created_at desc").Order("id desc").
		Limit(result.PerPage).Offset(offset).
		Find(&result.Files).Error; err != nil {
		return nil, err
	}

	result.TotalPages = totalPages(result.Total, result.PerPage)
	return result, nil
}

// Get fetches one file within the site.
func (s *FileService) Get(siteID, id uint) (*db.File, error) {
	var file db.File
	if err := s.db.Where("site_id = ?", siteID).First(&file, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return &file, nil
}

// SetDisplayName overrides how an attached file is titled on one post. The
// link itself must already exist.
func (s *FileService) SetDisplayName(siteID, postID, fileID uint, displayName string) error {
	if _, err := s.Get(siteID, fileID); err != nil {
		return err
	}

	result := s.db.Model(&db.PostFile{}).
		Where("post_id = ? AND file_id = ?", postID, fileID).
		Update("display_name", displayName)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFileNotAttached
	}
	return nil
}

// Delete removes the metadata row and the stored bytes together. Posts that
// referenced the file simply lose the link.
func (s *FileService) Delete(siteID, id uint) error {
	file, err := s.Get(siteID, id)
	if err != nil {
		return err
	}

	location, err := storage.ParseLocation(file.StorageLocation)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM post_files WHERE file_id = ?", file.ID).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(file).Error; err != nil {
			return err
		}
		return s.store.Delete(location, assetPath(s.cfg.StoragePath, file.Path))
	})
}
