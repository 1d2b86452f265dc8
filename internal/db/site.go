package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Site 定义了站点（租户）模型，所有内容都归属于唯一一个站点
type Site struct {
	gorm.Model
	Name   string `gorm:"not null"`
	Domain string `gorm:"unique"`
}

// EnsureSite 存在性检查：若不存在任何站点，则创建一个默认站点。
func EnsureSite(name, domain string) (*Site, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}

	var site Site
	err := DB.Order("id asc").First(&site).Error
	if err == nil {
		return &site, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	site = Site{
		Name:   strings.TrimSpace(name),
		Domain: strings.ToLower(strings.TrimSpace(domain)),
	}
	if site.Name == "" {
		site.Name = "Default"
	}
	if err := DB.Create(&site).Error; err != nil {
		return nil, err
	}
	return &site, nil
}
