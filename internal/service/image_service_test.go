package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quillpress/quillpress/internal/config"
	"github.com/quillpress/quillpress/internal/db"
	"github.com/quillpress/quillpress/internal/storage"
)

func setupImageServiceTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:image-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}
}

func imageAssetConfig() config.AssetConfig {
	return config.AssetConfig{
		Enabled:         true,
		PerPage:         15,
		StorageLocation: "managed",
		StoragePath:     "images/blog",
		FilenameFormat:  "[datetime]_[filename]",
	}
}

// pngPayload encodes a small PNG so the dimension probe has real bytes.
func pngPayload(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// failingStore rejects every write, standing in for a broken backend.
type failingStore struct{}

func (failingStore) Write(storage.Location, string, io.Reader) error {
	return errors.New("backend unavailable")
}

func (failingStore) Read(storage.Location, string) (io.ReadCloser, error) {
	return nil, errors.New("backend unavailable")
}

func (failingStore) Delete(storage.Location, string) error {
	return errors.New("backend unavailable")
}

func TestImageUploadBuildsTemplatedFilename(t *testing.T) {
	gdb, cleanup := setupImageServiceTestDB(t)
	defer cleanup()

	siteID := seedSite(t, gdb, "Blog", "blog.test")
	managedRoot := t.TempDir()
	store := storage.NewDiskStore(t.TempDir(), managedRoot)
	svc := NewImageService(gdb, store, imageAssetConfig())

	img, err := svc.Upload(siteID, ImageUploadInput{
		Filename: "My Photo.png",
		Data:     bytes.NewReader(pngPayload(t, 2, 3)),
		Caption:  "a caption",
	})
	if err != nil {
		t.Fatalf("upload image: %v", err)
	}

	pattern := regexp.MustCompile(`^\d{8}-\d{6}_My_Photo\.png$`)
	if !pattern.MatchString(img.Path) {
		t.Fatalf("unexpected stored path %q", img.Path)
	}
	if img.Width != 2 || img.Height != 3 {
		t.Fatalf("expected probed dimensions 2x3, got %dx%d", img.Width, img.Height)
	}
	if img.StorageLocation != "managed" {
		t.Fatalf("unexpected storage location %q", img.StorageLocation)
	}

	onDisk := filepath.Join(managedRoot, "images", "blog", img.Path)
	if _, err := os.Stat(onDisk); err != nil {
		t.Fatalf("expected payload at %s: %v", onDisk, err)
	}
}

func TestImageUploadRollsBackRowWhenWriteFails(t *testing.T) {
	gdb, cleanup := setupImageServiceTestDB(t)
	defer cleanup()

	siteID := seedSite(t, gdb, "Blog", "blog.test")
	svc := NewImageService(gdb, failingStore{}, imageAssetConfig())

	_, err := svc.Upload(siteID, ImageUploadInput{
		Filename: "photo.png",
		Data:     bytes.NewReader(pngPayload(t, 1, 1)),
	})
	if err == nil {
		t.Fatal("expected upload to fail")
	}

	var count int64
	if err := gdb.Model(&db.Image{}).Count(&count).Error; err != nil {
		t.Fatalf("count images: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no orphan rows, got %d", count)
	}
}

func TestImageUploadRejectsUnknownStorageLocation(t *testing.T) {
	gdb, cleanup := setupImageServiceTestDB(t)
	defer cleanup()

	siteID := seedSite(t, gdb, "Blog", "blog.test")
	cfg := imageAssetConfig()
	cfg.StorageLocation = "cloud"
	svc := NewImageService(gdb, storage.NewDiskStore(t.TempDir(), t.TempDir()), cfg)

	_, err := svc.Upload(siteID, ImageUploadInput{
		Filename: "photo.png",
		Data:     bytes.NewReader(pngPayload(t, 1, 1)),
	})
	if !errors.Is(err, storage.ErrUnknownLocation) {
		t.Fatalf("expected ErrUnknownLocation, got %v", err)
	}
}

func TestImageUploadRequiresPayload(t *testing.T) {
	gdb, cleanup := setupImageServiceTestDB(t)
	defer cleanup()

	siteID := seedSite(t, gdb, "Blog", "blog.test")
	svc := NewImageService(gdb, storage.NewDiskStore(t.TempDir(), t.TempDir()), imageAssetConfig())

	if _, err := svc.Upload(siteID, ImageUploadInput{Filename: "photo.png"}); !errors.Is(err, ErrImagePayloadMissing) {
		t.Fatalf("expected ErrImagePayloadMissing for nil data, got %v", err)
	}
	if _, err := svc.Upload(siteID, ImageUploadInput{Data: bytes.NewReader([]byte("x"))}); !errors.Is(err, ErrImagePayloadMissing) {
		t.Fatalf("expected ErrImagePayloadMissing for empty filename, got %v", err)
	}
}

func TestImageUpdateDetailsOnlyTouchesCaptionAndAlt(t *testing.T) {
	gdb, cleanup := setupImageServiceTestDB(t)
	defer cleanup()

	siteID := seedSite(t, gdb, "Blog", "blog.test")
	svc := NewImageService(gdb, storage.NewDiskStore(t.TempDir(), t.TempDir()), imageAssetConfig())

	img, err := svc.Upload(siteID, ImageUploadInput{
		Filename: "photo.png",
		Data:     bytes.NewReader(pngPayload(t, 4, 4)),
	})
	if err != nil {
		t.Fatalf("upload image: %v", err)
	}

	updated, err := svc.UpdateDetails(siteID, img.ID, "new caption", "new alt")
	if err != nil {
		t.Fatalf("update details: %v", err)
	}

	if updated.Caption != "new caption" || updated.AltText != "new alt" {
		t.Fatalf("details not applied: %+v", updated)
	}
	if updated.Path != img.Path || updated.Width != img.Width {
		t.Fatalf("immutable fields changed: %+v", updated)
	}
}

func TestImageDeleteRemovesRowAndBytes(t *testing.T) {
	gdb, cleanup := setupImageServiceTestDB(t)
	defer cleanup()

	siteID := seedSite(t, gdb, "Blog", "blog.test")
	managedRoot := t.TempDir()
	store := storage.NewDiskStore(t.TempDir(), managedRoot)
	svc := NewImageService(gdb, store, imageAssetConfig())

	img, err := svc.Upload(siteID, ImageUploadInput{
		Filename: "photo.png",
		Data:     bytes.NewReader(pngPayload(t, 1, 1)),
	})
	if err != nil {
		t.Fatalf("upload image: %v", err)
	}

	if err := svc.Delete(siteID, img.ID); err != nil {
		t.Fatalf("delete image: %v", err)
	}

	if _, err := svc.Get(siteID, img.ID); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound after delete, got %v", err)
	}
	onDisk := filepath.Join(managedRoot, "images", "blog", img.Path)
	if _, err := os.Stat(onDisk); !os.IsNotExist(err) {
		t.Fatalf("expected payload removed from %s", onDisk)
	}
}
