package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quillpress/quillpress/internal/db"
)

func setupTagServiceTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:tag-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
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

func TestTagReconcileCreatesEachNameOnce(t *testing.T) {
	gdb, cleanup := setupTagServiceTestDB(t)
	defer cleanup()

	siteID := seedSite(t, gdb, "Blog", "blog.test")
	svc := NewTagService(gdb)

	ids, err := svc.Reconcile(gdb, siteID, []string{"go", "go", " go ", "Rust", ""})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if len(ids) != 2 {
		t.Fatalf("expected 2 tag ids, got %d (%v)", len(ids), ids)
	}

	var count int64
	if err := gdb.Model(&db.Tag{}).Where("site_id = ?", siteID).Count(&count).Error; err != nil {
		t.Fatalf("count tags: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 tag rows, got %d", count)
	}
}

func TestTagReconcileReusesExistingTags(t *testing.T) {
	gdb, cleanup := setupTagServiceTestDB(t)
	defer cleanup()

	siteID := seedSite(t, gdb, "Blog", "blog.test")
	svc := NewTagService(gdb)

	first, err := svc.Reconcile(gdb, siteID, []string{"go", "web"})
	if err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	second, err := svc.Reconcile(gdb, siteID, []string{"web", "go"})
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}

	want := map[uint]bool{first[0]: true, first[1]: true}
	for _, id := range second {
		if !want[id] {
			t.Fatalf("expected reuse of existing tag ids %v, got %v", first, second)
		}
	}

	var count int64
	if err := gdb.Model(&db.Tag{}).Count(&count).Error; err != nil {
		t.Fatalf("count tags: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected no new rows on re-reconcile, got %d", count)
	}
}

func TestTagReconcileScopesNamesPerSite(t *testing.T) {
	gdb, cleanup := setupTagServiceTestDB(t)
	defer cleanup()

	siteA := seedSite(t, gdb, "A", "a.test")
	siteB := seedSite(t, gdb, "B", "b.test")
	svc := NewTagService(gdb)

	idsA, err := svc.Reconcile(gdb, siteA, []string{"go"})
	if err != nil {
		t.Fatalf("reconcile site A: %v", err)
	}
	idsB, err := svc.Reconcile(gdb, siteB, []string{"go"})
	if err != nil {
		t.Fatalf("reconcile site B: %v", err)
	}

	if idsA[0] == idsB[0] {
		t.Fatalf("expected separate tag rows per site, both got id %d", idsA[0])
	}
}

func TestTagListOrdersByName(t *testing.T) {
	gdb, cleanup := setupTagServiceTestDB(t)
	defer cleanup()

	siteID := seedSite(t, gdb, "Blog", "blog.test")
	svc := NewTagService(gdb)

	if _, err := svc.Reconcile(gdb, siteID, []string{"zig", "ada", "go"}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	result, err := svc.List(siteID, 1, 10)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}

	if len(result.Tags) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(result.Tags))
	}
	if result.Tags[0].Name != "ada" || result.Tags[1].Name != "go" || result.Tags[2].Name != "zig" {
		t.Fatalf("unexpected order: %v", []string{result.Tags[0].Name, result.Tags[1].Name, result.Tags[2].Name})
	}
}

func TestTagDeleteRefusesWhenInUse(t *testing.T) {
	gdb, cleanup := setupTagServiceTestDB(t)
	defer cleanup()

	siteID := seedSite(t, gdb, "Blog", "blog.test")
	svc := NewTagService(gdb)

	post := db.Post{SiteID: siteID, Title: "Post", Slug: "post"}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("failed to seed post: %v", err)
	}
	ids, err := svc.Reconcile(gdb, siteID, []string{"go"})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if err := syncLinks(gdb, postTags, post.ID, ids); err != nil {
		t.Fatalf("attach tag: %v", err)
	}

	if err := svc.Delete(siteID, ids[0]); !errors.Is(err, ErrTagInUse) {
		t.Fatalf("expected ErrTagInUse, got %v", err)
	}
}

func TestTagDeleteRemovesUnusedTag(t *testing.T) {
	gdb, cleanup := setupTagServiceTestDB(t)
	defer cleanup()

	siteID := seedSite(t, gdb, "Blog", "blog.test")
	svc := NewTagService(gdb)

	ids, err := svc.Reconcile(gdb, siteID, []string{"stale"})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if err := svc.Delete(siteID, ids[0]); err != nil {
		t.Fatalf("delete tag: %v", err)
	}

	if err := svc.Delete(siteID, ids[0]); !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound after delete, got %v", err)
	}
}
