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
	ErrCommentNotFound      = errors.New("comment not found")
	ErrCommentBodyRequired  = errors.New("comment body is required")
	ErrCommentsDisabled     = errors.New("comments are disabled for this post")
	ErrGuestsNotAllowed     = errors.New("guest commenting is not allowed")
	ErrGuestDetailsRequired = errors.New("guest name and email are required")
	ErrCommentImageDenied   = errors.New("comment images are not allowed")
	ErrInvalidParent        = errors.New("parent comment is invalid")
)

// CommentService manages threaded comment creation, approval gating and image
// attachments. Comments move Pending→Approved by moderator action only;
// deletion is terminal and takes the attached image with it.
type CommentService struct {
	db     *gorm.DB
	store  storage.Store
	cfg    config.CommentsConfig
	images config.AssetConfig
}

// CommentInput carries one new comment. UserID and the guest fields are
// mutually exclusive: an authenticated author never stores guest details.
type CommentInput struct {
	PostID     uint
	ParentID   *uint
	UserID     *uint
	GuestName  string
	GuestEmail string
	Body       string

	ImageFilename string
	ImageData     io.Reader
}

// CommentListResult aggregates paginated comments.
type CommentListResult struct {
	Comments   []db.Comment
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// NewCommentService creates a CommentService instance. The image asset config
// supplies the filename template and storage target for attachments.
func NewCommentService(gdb *gorm.DB, store storage.Store, cfg config.CommentsConfig, images config.AssetConfig) *CommentService {
	return &CommentService{db: gdb, store: store, cfg: cfg, images: images}
}

// Create validates authorship and threading rules and persists the comment,
// writing any attached image in the same transaction. With approval required,
// new comments start out pending; otherwise they are live immediately.
func (s *CommentService) Create(siteID uint, input CommentInput) (*db.Comment, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, ErrCommentBodyRequired
	}

	var post db.Post
	if err := s.db.Where("site_id = ?", siteID).First(&post, input.PostID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if !post.CommentsEnabled {
		return nil, ErrCommentsDisabled
	}

	comment := db.Comment{
		SiteID:     siteID,
		PostID:     post.ID,
		Body:       body,
		IsApproved: !s.cfg.RequiresApproval,
	}

	if input.UserID != nil {
		comment.UserID = input.UserID
	} else {
		if !s.cfg.AllowGuests {
			return nil, ErrGuestsNotAllowed
		}
		name := strings.TrimSpace(input.GuestName)
		email := strings.TrimSpace(input.GuestEmail)
		if name == "" || email == "" {
			return nil, ErrGuestDetailsRequired
		}
		comment.GuestName = name
		comment.GuestEmail = email
	}

	if input.ParentID != nil {
		var parent db.Comment
		if err := s.db.Where("site_id = ? AND post_id = ?", siteID, post.ID).
			First(&parent, *input.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidParent
			}
			return nil, err
		}
		// Threading stays one level deep: replies hang off top-level comments.
		if parent.ParentID != nil {
			return nil, ErrInvalidParent
		}
		comment.ParentID = &parent.ID
	}

	var payload []byte
	var location storage.Location
	if input.ImageData != nil {
		if !s.cfg.AllowImages {
			return nil, ErrCommentImageDenied
		}

		var err error
		location, err = storage.ParseLocation(s.images.StorageLocation)
		if err != nil {
			return nil, err
		}
		payload, err = io.ReadAll(input.ImageData)
		if err != nil {
			return nil, err
		}
		comment.ImagePath = buildFilename(s.images.FilenameFormat, input.ImageFilename, time.Now())
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		if payload != nil {
			return s.store.Write(location, assetPath(s.images.StoragePath, comment.ImagePath), bytes.NewReader(payload))
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return &comment, nil
}

// Get fetches one comment within the site.
func (s *CommentService) Get(siteID, id uint) (*db.Comment, error) {
	var comment db.Comment
	if err := s.db.Where("site_id = ?", siteID).Preload("User").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// Approve flips a pending comment live. Approving twice is harmless.
func (s *CommentService) Approve(siteID, id uint) (*db.Comment, error) {
	comment, err := s.Get(siteID, id)
	if err != nil {
		return nil, err
	}

	if !comment.IsApproved {
		comment.IsApproved = true
		if err := s.db.Save(comment).Error; err != nil {
			return nil, err
		}
	}
	return comment, nil
}

// Delete removes the comment, its replies, and every attached image asset.
func (s *CommentService) Delete(siteID, id uint) error {
	comment, err := s.Get(siteID, id)
	if err != nil {
		return err
	}

	var replies []db.Comment
	if err := s.db.Where("parent_id = ?", comment.ID).Find(&replies).Error; err != nil {
		return err
	}

	doomed := append([]db.Comment{*comment}, replies...)

	return s.db.Transaction(func(tx *gorm.DB) error {
		for i := range doomed {
			if err := tx.Unscoped().Delete(&doomed[i]).Error; err != nil {
				return err
			}
			if err := s.deleteImage(&doomed[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveImage detaches the comment's image without touching its approval
// state or the comment itself.
func (s *CommentService) RemoveImage(siteID, id uint) (*db.Comment, error) {
	comment, err := s.Get(siteID, id)
	if err != nil {
		return nil, err
	}
	if comment.ImagePath == "" {
		return comment, nil
	}

	stale := *comment
	comment.ImagePath = ""
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(comment).Update("image_path", "").Error; err != nil {
			return err
		}
		return s.deleteImage(&stale)
	}); err != nil {
		return nil, err
	}

	return comment, nil
}

// ListForPost returns the post's top-level comments for frontend display,
// newest first, replies preloaded one level deep. When moderation is required
// only approved comments (and replies) are included.
func (s *CommentService) ListForPost(siteID, postID uint, page, perPage int) (*CommentListResult, error) {
	result := &CommentListResult{Page: page, PerPage: perPage}
	if result.Page <= 0 {
		result.Page = 1
	}
	if result.PerPage <= 0 {
		result.PerPage = 15
	}

	base := s.db.Model(&db.Comment{}).
		Where("site_id = ? AND post_id = ? AND parent_id IS NULL", siteID, postID)
	if s.cfg.RequiresApproval {
		base = base.Where("is_approved = ?", true)
	}

	if err := base.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	query := s.db.
		Where("site_id = ? AND post_id = ? AND parent_id IS NULL", siteID, postID).
		Preload("Replies", func(tx *gorm.DB) *gorm.DB {
			if s.cfg.RequiresApproval {
				tx = tx.Where("is_approved = ?", true)
			}
			return tx.Order("created_at asc")
		}).
		Preload("Replies.User").
		Preload("User")
	if s.cfg.RequiresApproval {
		query = query.Where("is_approved = ?", true)
	}

	offset := (result.Page - 1) * result.PerPage
	if err := query.Order("created_at desc").Order("id desc").
		Limit(result.PerPage).Offset(offset).
		Find(&result.Comments).Error; err != nil {
		return nil, err
	}

	result.TotalPages = totalPages(result.Total, result.PerPage)
	return result, nil
}

// Replies returns one comment's replies, oldest first, honoring the same
// moderation gate as ListForPost.
func (s *CommentService) Replies(siteID, parentID uint) ([]db.Comment, error) {
	query := s.db.Where("site_id = ? AND parent_id = ?", siteID, parentID).Preload("User")
	if s.cfg.RequiresApproval {
		query = query.Where("is_approved = ?", true)
	}

	var replies []db.Comment
	if err := query.Order("created_at asc").Order("id asc").Find(&replies).Error; err != nil {
		return nil, err
	}
	return replies, nil
}

// ListPending returns the moderation queue, oldest first.
func (s *CommentService) ListPending(siteID uint, page, perPage int) (*CommentListResult, error) {
	result := &CommentListResult{Page: page, PerPage: perPage}
	if result.Page <= 0 {
		result.Page = 1
	}
	if result.PerPage <= 0 {
		result.PerPage = 15
	}

	base := s.db.Model(&db.Comment{}).Where("site_id = ? AND is_approved = ?", siteID, false)
	if err := base.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	offset := (result.Page - 1) * result.PerPage
	if err := s.db.Where("site_id = ? AND is_approved = ?", siteID, false).
		Preload("User").
		Order("created_at asc").Order("id asc").
		Limit(result.PerPage).Offset(offset).
		Find(&result.Comments).Error; err != nil {
		return nil, err
	}

	result.TotalPages = totalPages(result.Total, result.PerPage)
	return result, nil
}

func (s *CommentService) deleteImage(comment *db.Comment) error {
	if comment.ImagePath == "" {
		return nil
	}

	location, err := storage.ParseLocation(s.images.StorageLocation)
	if err != nil {
		return err
	}
	return s.store.Delete(location, assetPath(s.images.StoragePath, comment.ImagePath))
}
