package db

import "gorm.io/gorm"

// Comment 定义了评论模型。作者要么是注册用户，要么是提供姓名与邮箱的访客，二者互斥。
type Comment struct {
	gorm.Model
	SiteID     uint  `gorm:"not null;index"`
	PostID     uint  `gorm:"not null;index"`
	ParentID   *uint `gorm:"index"`
	UserID     *uint
	GuestName  string
	GuestEmail string
	Body       string `gorm:"not null"`
	ImagePath  string
	IsApproved bool `gorm:"default:false"`

	User    *User     `gorm:"foreignKey:UserID"`
	Replies []Comment `gorm:"foreignKey:ParentID"`
}

// IsGuest reports whether the comment was left by an unauthenticated visitor.
func (c *Comment) IsGuest() bool {
	return c.UserID == nil
}
