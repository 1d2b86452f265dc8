package db

import "gorm.io/gorm"

// Tag 定义了标签模型，按名称在站点内去重复用
type Tag struct {
	gorm.Model
	SiteID uint   `gorm:"not null;index"`
	Name   string `gorm:"not null"`
	Posts  []Post `gorm:"many2many:post_tags;"`
}
