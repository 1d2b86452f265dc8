package db

import "gorm.io/gorm"

// Image 定义了上传图片的元数据模型
type Image struct {
	gorm.Model
	SiteID          uint   `gorm:"not null;index"`
	StorageLocation string `gorm:"not null"`
	Path            string `gorm:"not null"`
	Caption         string
	AltText         string
	Width           int
	Height          int
}
