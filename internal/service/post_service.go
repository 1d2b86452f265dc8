package service

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/quillpress/quillpress/internal/config"
	"github.com/quillpress/quillpress/internal/db"
	"github.com/quillpress/quillpress/internal/event"
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrTitleRequired    = errors.New("post title is required")
	ErrSlugInvalid      = errors.New("slug has no usable characters")
	ErrSlugTaken        = errors.New("slug is already in use on this site")
	ErrStatusInvalid    = errors.New("post status is invalid")
	ErrFormatInvalid    = errors.New("post format is invalid")
	ErrCategoryUnknown  = errors.New("category does not exist on this site")
	ErrAttachedFileLost = errors.New("attached file does not exist on this site")
)

// publishBackdate is subtracted from "now" when no publish time is supplied,
// so schedule comparisons immediately treat the post as already published.
const publishBackdate = time.Minute

// PostService orchestrates the post lifecycle: slug assignment, association
// synchronization, scheduling, soft deletion and event emission.
type PostService struct {
	db   *gorm.DB
	tags *TagService
	bus  *event.Bus
	cfg  *config.AppConfig
}

// PostInput represents fields accepted when creating or updating a post.
// CategoryIDs, TagNames and FileIDs are target sets: the stored links are
// reconciled to exactly match them, and empty means detach everything.
type PostInput struct {
	Title           string
	Slug            string
	Content         string
	Status          string
	Format          string
	PublishedAt     *time.Time
	IsFeatured      bool
	ShowFeatured    bool
	CommentsEnabled bool
	AuthorID        *uint
	FeaturedImageID *uint

	CategoryIDs []uint
	TagNames    []string
	FileIDs     []uint
}

// PostFilter describes filters for listing posts.
type PostFilter struct {
	Page    int
	PerPage int
}

// PostListResult aggregates paginated list data.
type PostListResult struct {
	Posts      []db.Post
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB, tags *TagService, bus *event.Bus, cfg *config.AppConfig) *PostService {
	return &PostService{db: gdb, tags: tags, bus: bus, cfg: cfg}
}

// Create persists a new post with its associations in one transaction and
// emits a post.created event on success.
func (s *PostService) Create(siteID uint, input PostInput) (*db.Post, error) {
	fields, err := s.normalize(input)
	if err != nil {
		return nil, err
	}

	post := db.Post{
		SiteID:          siteID,
		AuthorID:        input.AuthorID,
		Title:           fields.title,
		Slug:            fields.slug,
		Content:         input.Content,
		Status:          fields.status,
		Format:          fields.format,
		PublishedAt:     fields.publishedAt,
		IsFeatured:      input.IsFeatured,
		ShowFeatured:    input.ShowFeatured,
		CommentsEnabled: input.CommentsEnabled,
		FeaturedImageID: input.FeaturedImageID,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return translateSlugError(err)
		}
		return s.syncRelations(tx, siteID, post.ID, input)
	}); err != nil {
		return nil, err
	}

	created, err := s.Get(siteID, post.ID)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(event.NewPostCreated(*created))
	return created, nil
}

// Update applies the input to an existing post, re-runs slug assignment and
// association synchronization, and emits post.updated with both snapshots.
func (s *PostService) Update(siteID, id uint, input PostInput) (*db.Post, error) {
	old, err := s.Get(siteID, id)
	if err != nil {
		return nil, err
	}

	fields, err := s.normalize(input)
	if err != nil {
		return nil, err
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"title":             fields.title,
			"slug":              fields.slug,
			"content":           input.Content,
			"status":            fields.status,
			"format":            fields.format,
			"published_at":      fields.publishedAt,
			"is_featured":       input.IsFeatured,
			"show_featured":     input.ShowFeatured,
			"comments_enabled":  input.CommentsEnabled,
			"featured_image_id": input.FeaturedImageID,
		}
		if err := tx.Model(&db.Post{}).Where("id = ?", old.ID).Updates(updates).Error; err != nil {
			return translateSlugError(err)
		}
		return s.syncRelations(tx, siteID, old.ID, input)
	}); err != nil {
		return nil, err
	}

	updated, err := s.Get(siteID, id)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(event.NewPostUpdated(*old, *updated))
	return updated, nil
}

// Delete soft-deletes the post and emits post.deleted carrying the final
// snapshot. The slug becomes available again for live posts.
func (s *PostService) Delete(siteID, id uint) error {
	old, err := s.Get(siteID, id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(&db.Post{}, old.ID).Error; err != nil {
		return err
	}

	s.bus.Publish(event.NewPostDeleted(*old))
	return nil
}

// Get fetches a post within the site with its associations preloaded.
func (s *PostService) Get(siteID, id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.Where("site_id = ?", siteID).
		Preload("Categories").
		Preload("Tags").
		Preload("Files").
		Preload("Author").
		Preload("FeaturedImage").
		First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetBySlug fetches a post by its site-unique slug.
func (s *PostService) GetBySlug(siteID uint, slug string) (*db.Post, error) {
	var post db.Post
	if err := s.db.Where("site_id = ? AND slug = ?", siteID, slug).
		Preload("Categories").
		Preload("Tags").
		Preload("Files").
		Preload("Author").
		Preload("FeaturedImage").
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// List returns the site's posts, featured first and then by most recent
// publish time. With separate_scheduled enabled, posts whose publish time is
// still in the future are held back.
func (s *PostService) List(siteID uint, filter PostFilter) (*PostListResult, error) {
	result := s.newListResult(filter)

	base := s.db.Model(&db.Post{}).Where("site_id = ?", siteID)
	if s.cfg.Posts.SeparateScheduled {
		base = base.Where("published_at <= ?", time.Now())
	}

	if err := base.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	query := s.db.Where("site_id = ?", siteID).
		Preload("Categories").
		Preload("Tags").
		Preload("Author").
		Preload("FeaturedImage")
	if s.cfg.Posts.SeparateScheduled {
		query = query.Where("published_at <= ?", time.Now())
	}

	offset := (result.Page - 1) * result.PerPage
	if err := query.
		Order("is_featured desc").
		Order("published_at desc").
		Order("id desc").
		Limit(result.PerPage).Offset(offset).
		Find(&result.Posts).Error; err != nil {
		return nil, err
	}

	result.TotalPages = totalPages(result.Total, result.PerPage)
	return result, nil
}

// Scheduled returns only posts whose publish time is strictly in the future,
// soonest first.
func (s *PostService) Scheduled(siteID uint, filter PostFilter) (*PostListResult, error) {
	result := s.newListResult(filter)

	now := time.Now()
	base := s.db.Model(&db.Post{}).Where("site_id = ? AND published_at > ?", siteID, now)
	if err := base.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	offset := (result.Page - 1) * result.PerPage
	if err := s.db.Where("site_id = ? AND published_at > ?", siteID, now).
		Preload("Categories").
		Preload("Tags").
		Preload("Author").
		Order("published_at asc").
		Order("id asc").
		Limit(result.PerPage).Offset(offset).
		Find(&result.Posts).Error; err != nil {
		return nil, err
	}

	result.TotalPages = totalPages(result.Total, result.PerPage)
	return result, nil
}

// RecordView notes that a registered user read the post. The first visit
// inserts a row; later visits only refresh its timestamp.
func (s *PostService) RecordView(siteID, postID, userID uint) error {
	var post db.Post
	if err := s.db.Select("id").Where("site_id = ?", siteID).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	result := s.db.Model(&db.PostView{}).
		Where("post_id = ? AND user_id = ?", post.ID, userID).
		Update("updated_at", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	view := db.PostView{PostID: post.ID, UserID: userID}
	if err := s.db.Create(&view).Error; err != nil {
		// A concurrent first visit got there already; treat it as the touch.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}
	return nil
}

type normalizedPost struct {
	title       string
	slug        string
	status      string
	format      string
	publishedAt time.Time
}

func (s *PostService) normalize(input PostInput) (normalizedPost, error) {
	var fields normalizedPost

	fields.title = strings.TrimSpace(input.Title)
	if fields.title == "" {
		return fields, ErrTitleRequired
	}

	source := strings.TrimSpace(input.Slug)
	if source == "" {
		source = fields.title
	}
	fields.slug = MakeSlug(source)
	if fields.slug == "" {
		return fields, ErrSlugInvalid
	}

	fields.status = input.Status
	switch fields.status {
	case "":
		fields.status = db.PostStatusDraft
	case db.PostStatusDraft, db.PostStatusActive:
	default:
		return fields, ErrStatusInvalid
	}

	fields.format = input.Format
	switch fields.format {
	case "":
		fields.format = db.PostFormatStandard
	case db.PostFormatStandard, db.PostFormatVideo:
	default:
		return fields, ErrFormatInvalid
	}

	if input.PublishedAt != nil && !input.PublishedAt.IsZero() {
		fields.publishedAt = *input.PublishedAt
	} else {
		fields.publishedAt = time.Now().Add(-publishBackdate)
	}

	return fields, nil
}

func (s *PostService) syncRelations(tx *gorm.DB, siteID, postID uint, input PostInput) error {
	if s.cfg.Categories.Enabled {
		if err := s.verifyOwnership(tx, &db.Category{}, siteID, input.CategoryIDs, ErrCategoryUnknown); err != nil {
			return err
		}
		if err := syncLinks(tx, postCategories, postID, input.CategoryIDs); err != nil {
			return err
		}
	}

	if s.cfg.Tags.Enabled {
		tagIDs, err := s.tags.Reconcile(tx, siteID, input.TagNames)
		if err != nil {
			return err
		}
		if err := syncLinks(tx, postTags, postID, tagIDs); err != nil {
			return err
		}
	}

	if s.cfg.Files.Enabled {
		if err := s.verifyOwnership(tx, &db.File{}, siteID, input.FileIDs, ErrAttachedFileLost); err != nil {
			return err
		}
		if err := syncLinks(tx, postFiles, postID, input.FileIDs); err != nil {
			return err
		}
	}

	return nil
}

// verifyOwnership rejects target ids that do not belong to the site, so a
// crafted request can never link another tenant's rows.
func (s *PostService) verifyOwnership(tx *gorm.DB, model interface{}, siteID uint, ids []uint, missing error) error {
	if len(ids) == 0 {
		return nil
	}

	unique := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	var count int64
	if err := tx.Model(model).Where("site_id = ? AND id IN ?", siteID, ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(unique)) {
		return missing
	}
	return nil
}

func (s *PostService) newListResult(filter PostFilter) *PostListResult {
	result := &PostListResult{Page: filter.Page, PerPage: filter.PerPage}
	if result.Page <= 0 {
		result.Page = 1
	}
	if result.PerPage <= 0 {
		result.PerPage = s.cfg.Posts.PerPage
	}
	if result.PerPage <= 0 {
		result.PerPage = 10
	}
	return result
}

func translateSlugError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSlugTaken
	}
	return err
}
