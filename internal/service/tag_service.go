package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/quillpress/quillpress/internal/db"
)

var (
	ErrTagNotFound = errors.New("tag not found")
	ErrTagInUse    = errors.New("tag is associated with posts")
)

// TagService resolves free-text tag names to stable tag rows, scoped per site.
type TagService struct {
	db *gorm.DB
}

// TagListResult aggregates paginated tags.
type TagListResult struct {
	Tags       []db.Tag
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// NewTagService creates a TagService instance.
func NewTagService(gdb *gorm.DB) *TagService {
	return &TagService{db: gdb}
}

// Reconcile resolves the given names to tag ids within the site, creating any
// that do not exist yet. Blank and duplicate names are dropped; existing tags
// are reused untouched. It runs on the caller's transaction so a failed post
// save rolls the created tags back too.
func (s *TagService) Reconcile(tx *gorm.DB, siteID uint, names []string) ([]uint, error) {
	seen := make(map[string]struct{}, len(names))
	ids := make([]uint, 0, len(names))

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, done := seen[name]; done {
			continue
		}
		seen[name] = struct{}{}

		id, err := s.findOrCreate(tx, siteID, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func (s *TagService) findOrCreate(tx *gorm.DB, siteID uint, name string) (uint, error) {
	var tag db.Tag
	err := tx.Where("site_id = ? AND name = ?", siteID, name).First(&tag).Error
	if err == nil {
		return tag.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	tag = db.Tag{SiteID: siteID, Name: name}
	if err := tx.Create(&tag).Error; err != nil {
		// Lost a race against a concurrent insert: the unique index is the
		// arbiter, so fetch the winner.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var winner db.Tag
			if ferr := tx.Where("site_id = ? AND name = ?", siteID, name).First(&winner).Error; ferr != nil {
				return 0, ferr
			}
			return winner.ID, nil
		}
		return 0, err
	}

	return tag.ID, nil
}

// List returns the site's tags ordered by name, paginated.
func (s *TagService) List(siteID uint, page, perPage int) (*TagListResult, error) {
	result := &TagListResult{Page: page, PerPage: perPage}
	if result.Page <= 0 {
		result.Page = 1
	}
	if result.PerPage <= 0 {
		result.PerPage = 15
	}

	base := s.db.Model(&db.Tag{}).Where("site_id = ?", siteID)
	if err := base.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	offset := (result.Page - 1) * result.PerPage
	if err := s.db.Where("site_id = ?", siteID).
		Order("name asc").Order("id asc").
		Limit(result.PerPage).Offset(offset).
		Find(&result.Tags).Error; err != nil {
		return nil, err
	}

	result.TotalPages = totalPages(result.Total, result.PerPage)
	return result, nil
}

// Delete removes a tag if no posts reference it.
func (s *TagService) Delete(siteID, id uint) error {
	var tag db.Tag
	if err := s.db.Where("site_id = ?", siteID).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTagNotFound
		}
		return err
	}

	var count int64
	if err := s.db.Table("post_tags").Where("tag_id = ?", tag.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrTagInUse
	}

	return s.db.Unscoped().Delete(&tag).Error
}

func totalPages(total int64, perPage int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
