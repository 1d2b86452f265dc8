package db

import "gorm.io/gorm"

// Category 定义了分类模型，名称在站点内唯一
type Category struct {
	gorm.Model
	SiteID      uint   `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	Description string
	Posts       []Post `gorm:"many2many:post_categories;"`
}
