package service

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quillpress/quillpress/internal/db"
)

func setupAssociationTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:association-%d?mode=memory&cache=shared", time.Now().UnixNano())
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

// seedSite creates a site row and returns its id. Shared by the service tests
// in this package.
func seedSite(t *testing.T, gdb *gorm.DB, name, domain string) uint {
	t.Helper()

	site := db.Site{Name: name, Domain: domain}
	if err := gdb.Create(&site).Error; err != nil {
		t.Fatalf("failed to seed site: %v", err)
	}
	return site.ID
}

func countLinks(t *testing.T, gdb *gorm.DB, rel relation, ownerID uint) int64 {
	t.Helper()

	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", rel.joinTable, rel.ownerKey)
	if err := gdb.Raw(query, ownerID).Scan(&count).Error; err != nil {
		t.Fatalf("failed to count links: %v", err)
	}
	return count
}

func linkedIDs(t *testing.T, gdb *gorm.DB, rel relation, ownerID uint) map[uint]bool {
	t.Helper()

	var ids []uint
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", rel.relatedKey, rel.joinTable, rel.ownerKey)
	if err := gdb.Raw(query, ownerID).Scan(&ids).Error; err != nil {
		t.Fatalf("failed to read links: %v", err)
	}

	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func TestSyncLinksAddsAndRemoves(t *testing.T) {
	gdb, cleanup := setupAssociationTestDB(t)
	defer cleanup()

	siteID := seedSite(t, gdb, "Blog", "blog.test")

	post := db.Post{SiteID: siteID, Title: "Post", Slug: "post"}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("failed to seed post: %v", err)
	}

	categories := []db.Category{
		{SiteID: siteID, Name: "One"},
		{SiteID: siteID, Name: "Two"},
		{SiteID: siteID, Name: "Three"},
	}
	if err := gdb.Create(&categories).Error; err != nil {
		t.Fatalf("failed to seed categories: %v", err)
	}

	if err := syncLinks(gdb, postCategories, post.ID, []uint{categories[0].ID, categories[1].ID}); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	if err := syncLinks(gdb, postCategories, post.ID, []uint{categories[1].ID, categories[2].ID}); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	got := linkedIDs(t, gdb, postCategories, post.ID)
	if len(got) != 2 || !got[categories[1].ID] || !got[categories[2].ID] {
		t.Fatalf("unexpected links after sync: %v", got)
	}
}

func TestSyncLinksEmptySetDetachesEverything(t *testing.T) {
	gdb, cleanup := setupAssociationTestDB(t)
	defer cleanup()

	siteID := seedSite(t, gdb, "Blog", "blog.test")

	post := db.Post{SiteID: siteID, Title: "Post", Slug: "post"}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("failed to seed post: %v", err)
	}
	tag := db.Tag{SiteID: siteID, Name: "go"}
	if err := gdb.Create(&tag).Error; err != nil {
		t.Fatalf("failed to seed tag: %v", err)
	}

	if err := syncLinks(gdb, postTags, post.ID, []uint{tag.ID}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := syncLinks(gdb, postTags, post.ID, nil); err != nil {
		t.Fatalf("detach: %v", err)
	}

	if count := countLinks(t, gdb, postTags, post.ID); count != 0 {
		t.Fatalf("expected no links, got %d", count)
	}
}

func TestSyncLinksIsIdempotent(t *testing.T) {
	gdb, cleanup := setupAssociationTestDB(t)
	defer cleanup()

	siteID := seedSite(t, gdb, "Blog", "blog.test")

	post := db.Post{SiteID: siteID, Title: "Post", Slug: "post"}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("failed to seed post: %v", err)
	}
	tag := db.Tag{SiteID: siteID, Name: "go"}
	if err := gdb.Create(&tag).Error; err != nil {
		t.Fatalf("failed to seed tag: %v", err)
	}

	targets := []uint{tag.ID, tag.ID}
	if err := syncLinks(gdb, postTags, post.ID, targets); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if err := syncLinks(gdb, postTags, post.ID, targets); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	if count := countLinks(t, gdb, postTags, post.ID); count != 1 {
		t.Fatalf("expected a single link, got %d", count)
	}
}

func TestSyncLinksKeepsPivotColumnsOnRetainedLinks(t *testing.T) {
	gdb, cleanup := setupAssociationTestDB(t)
	defer cleanup()

	siteID := seedSite(t, gdb, "Blog", "blog.test")

	post := db.Post{SiteID: siteID, Title: "Post", Slug: "post"}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("failed to seed post: %v", err)
	}
	files := []db.File{
		{SiteID: siteID, StorageLocation: "managed", Path: "a.pdf"},
		{SiteID: siteID, StorageLocation: "managed", Path: "b.pdf"},
	}
	if err := gdb.Create(&files).Error; err != nil {
		t.Fatalf("failed to seed files: %v", err)
	}

	if err := syncLinks(gdb, postFiles, post.ID, []uint{files[0].ID}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := gdb.Exec("UPDATE post_files SET display_name = ? WHERE post_id = ? AND file_id = ?",
		"Whitepaper", post.ID, files[0].ID).Error; err != nil {
		t.Fatalf("failed to set display name: %v", err)
	}

	// Re-sync with the first file retained and a second one added.
	if err := syncLinks(gdb, postFiles, post.ID, []uint{files[0].ID, files[1].ID}); err != nil {
		t.Fatalf("re-sync: %v", err)
	}

	var displayName string
	if err := gdb.Raw("SELECT display_name FROM post_files WHERE post_id = ? AND file_id = ?",
		post.ID, files[0].ID).Scan(&displayName).Error; err != nil {
		t.Fatalf("failed to read display name: %v", err)
	}
	if displayName != "Whitepaper" {
		t.Fatalf("expected retained pivot column, got %q", displayName)
	}
}
