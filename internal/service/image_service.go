package service

import (
	"bytes"
	"errors"
	"image"
	"io"
	"strings"
	"time"

	// Register the decoders used for dimension probing.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"gorm.io/gorm"

	"github.com/quillpress/quillpress/internal/config"
	"github.com/quillpress/quillpress/internal/db"
	"github.com/quillpress/quillpress/internal/storage"
)

var (
	ErrImageNotFound       = errors.New("image not found")
	ErrImagePayloadMissing = errors.New("image payload is required")
)

// ImageService handles image intake and metadata.
type ImageService struct {
	db    *gorm.DB
	store storage.Store
	cfg   config.AssetConfig
}

// ImageUploadInput carries one uploaded image payload.
type ImageUploadInput struct {
	Filename string
	Data     io.Reader
	Caption  string
	AltText  string
}

// ImageListResult aggregates paginated images.
type ImageListResult struct {
	Images     []db.Image
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// NewImageService creates an ImageService instance.
func NewImageService(gdb *gorm.DB, store storage.Store, cfg config.AssetConfig) *ImageService {
	return &ImageService{db: gdb, store: store, cfg: cfg}
}

// Upload expands the filename template, records the image metadata and writes
// the payload, the latter two as one transaction so a failed write leaves no
// orphan row.
func (s *ImageService) Upload(siteID uint, input ImageUploadInput) (*db.Image, error) {
	if input.Data == nil || strings.TrimSpace(input.Filename) == "" {
		return nil, ErrImagePayloadMissing
	}

	location, err := storage.ParseLocation(s.cfg.StorageLocation)
	if err != nil {
		return nil, err
	}

	payload, err := io.ReadAll(input.Data)
	if err != nil {
		return nil, err
	}

	width, height := probeDimensions(payload)
	filename := buildFilename(s.cfg.FilenameFormat, input.Filename, time.Now())

	img := db.Image{
		SiteID:          siteID,
		StorageLocation: string(location),
		Path:            filename,
		Caption:         input.Caption,
		AltText:         input.AltText,
		Width:           width,
		Height:          height,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&img).Error; err != nil {
			return err
		}
		return s.store.Write(location, assetPath(s.cfg.StoragePath, filename), bytes.NewReader(payload))
	}); err != nil {
		return nil, err
	}

	return &img, nil
}

// List returns the site's images, newest first.
func (s *ImageService) List(siteID uint, page, perPage int) (*ImageListResult, error) {
	result := &ImageListResult{Page: page, PerPage: perPage}
	if result.Page <= 0 {
		result.Page = 1
	}
	if result.PerPage <= 0 {
		result.PerPage = 15
	}

	if err := s.db.Model(&db.Image{}).Where("site_id = ?", siteID).Count(&result.Total).Error; err != nil {
		return nil, err
	}

	offset := (result.Page - 1) * result.PerPage
	if err := s.db.Where("site_id = ?", siteID).
		Order("created_at desc").Order("id desc").
		Limit(result.PerPage).Offset(offset).
		Find(&result.Images).Error; err != nil {
		return nil, err
	}

	result.TotalPages = totalPages(result.Total, result.PerPage)
	return result, nil
}

// Get fetches one image within the site.
func (s *ImageService) Get(siteID, id uint) (*db.Image, error) {
	var img db.Image
	if err := s.db.Where("site_id = ?", siteID).First(&img, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return &img, nil
}

// UpdateDetails changes the caption and alt text, the only mutable fields.
func (s *ImageService) UpdateDetails(siteID, id uint, caption, altText string) (*db.Image, error) {
	img, err := s.Get(siteID, id)
	if err != nil {
		return nil, err
	}

	img.Caption = caption
	img.AltText = altText
	if err := s.db.Save(img).Error; err != nil {
		return nil, err
	}
	return img, nil
}

// Delete removes the metadata row and the stored bytes together.
func (s *ImageService) Delete(siteID, id uint) error {
	img, err := s.Get(siteID, id)
	if err != nil {
		return err
	}

	location, err := storage.ParseLocation(img.StorageLocation)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(img).Error; err != nil {
			return err
		}
		return s.store.Delete(location, assetPath(s.cfg.StoragePath, img.Path))
	})
}

func probeDimensions(payload []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(payload))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
