package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Init opens the database connection and runs the automatic migrations.
// An empty databasePath falls back to quillpress.db.
func Init(databasePath string) error {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = "quillpress.db"
	}

	if err := ensureParentDir(path); err != nil {
		return err
	}

	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}

	if err := Migrate(gdb); err != nil {
		return err
	}

	DB = gdb
	return nil
}

// Migrate creates the schema for the core models and the uniqueness indexes
// the services rely on. It is shared by Init and the test suites.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.SetupJoinTable(&Post{}, "Files", &PostFile{}); err != nil {
		return err
	}

	if err := gdb.AutoMigrate(
		&Site{},
		&User{},
		&Category{},
		&Tag{},
		&Image{},
		&File{},
		&Post{},
		&PostFile{},
		&Comment{},
		&PostView{},
	); err != nil {
		return err
	}

	// Uniqueness among live rows only: soft-deleted posts free their slug, and
	// category/tag names can be reused after deletion.
	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_posts_site_slug ON posts(site_id, slug) WHERE deleted_at IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_site_name ON categories(site_id, name) WHERE deleted_at IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_tags_site_name ON tags(site_id, name) WHERE deleted_at IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_post_views_post_user ON post_views(post_id, user_id)`,
	}
	for _, stmt := range indexes {
		if err := gdb.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
