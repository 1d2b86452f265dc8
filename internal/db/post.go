package db

import (
	"time"

	"gorm.io/gorm"
)

// Post statuses and formats.
const (
	PostStatusDraft  = "draft"
	PostStatusActive = "active"

	PostFormatStandard = "standard"
	PostFormatVideo    = "video"
)

// Post 定义了文章模型
type Post struct {
	gorm.Model
	SiteID          uint   `gorm:"not null;index"`
	AuthorID        *uint  `gorm:"index"`
	Title           string `gorm:"not null"`
	Slug            string `gorm:"not null"`
	Content         string
	Status          string `gorm:"default:draft"`
	Format          string `gorm:"default:standard"`
	PublishedAt     time.Time
	IsFeatured      bool `gorm:"default:false"`
	ShowFeatured    bool `gorm:"default:false"`
	CommentsEnabled bool `gorm:"default:true"`
	FeaturedImageID *uint

	Author        *User      `gorm:"foreignKey:AuthorID"`
	FeaturedImage *Image     `gorm:"foreignKey:FeaturedImageID"`
	Categories    []Category `gorm:"many2many:post_categories;"`
	Tags          []Tag      `gorm:"many2many:post_tags;"`
	Files         []File     `gorm:"many2many:post_files;"`
}

// IsDraft reports whether the post is still a draft.
func (p *Post) IsDraft() bool {
	return p.Status == PostStatusDraft
}

// IsActive reports whether the post is live.
func (p *Post) IsActive() bool {
	return p.Status == PostStatusActive
}

// IsScheduled reports whether the post's publish time is still in the future.
func (p *Post) IsScheduled() bool {
	return p.PublishedAt.After(time.Now())
}

// PostView records the last time a registered user read a post. At most one
// row exists per (post, user); repeat visits refresh UpdatedAt.
type PostView struct {
	ID        uint `gorm:"primarykey"`
	PostID    uint `gorm:"not null;index"`
	UserID    uint `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
