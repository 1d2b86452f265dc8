package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/quillpress/quillpress/internal/db"
)

var (
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryNameRequired = errors.New("category name is required")
	ErrCategoryExists       = errors.New("category name is already in use on this site")
)

// CategoryService wraps category related operations.
type CategoryService struct {
	db *gorm.DB
}

// CategoryListResult aggregates paginated categories.
type CategoryListResult struct {
	Categories []db.Category
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// NewCategoryService creates a CategoryService instance.
func NewCategoryService(gdb *gorm.DB) *CategoryService {
	return &CategoryService{db: gdb}
}

// List returns the site's categories ordered by name, paginated.
func (s *CategoryService) List(siteID uint, page, perPage int) (*CategoryListResult, error) {
	result := &CategoryListResult{Page: page, PerPage: perPage}
	if result.Page <= 0 {
		result.Page = 1
	}
	if result.PerPage <= 0 {
		result.PerPage = 10
	}

	if err := s.db.Model(&db.Category{}).Where("site_id = ?", siteID).Count(&result.Total).Error; err != nil {
		return nil, err
	}

	offset := (result.Page - 1) * result.PerPage
	if err := s.db.Where("site_id = ?", siteID).
		Order("name asc").Order("id asc").
		Limit(result.PerPage).Offset(offset).
		Find(&result.Categories).Error; err != nil {
		return nil, err
	}

	result.TotalPages = totalPages(result.Total, result.PerPage)
	return result, nil
}

// Get fetches one category within the site.
func (s *CategoryService) Get(siteID, id uint) (*db.Category, error) {
	var category db.Category
	if err := s.db.Where("site_id = ?", siteID).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// Create inserts a new category; names are unique per site among live rows.
func (s *CategoryService) Create(siteID uint, name, description string) (*db.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	category := db.Category{SiteID: siteID, Name: name, Description: description}
	if err := s.db.Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	return &category, nil
}

// Update renames a category while keeping per-site uniqueness.
func (s *CategoryService) Update(siteID, id uint, name, description string) (*db.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	category, err := s.Get(siteID, id)
	if err != nil {
		return nil, err
	}

	category.Name = name
	category.Description = description
	if err := s.db.Save(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	return category, nil
}

// Delete soft-deletes the category and detaches it from every post.
func (s *CategoryService) Delete(siteID, id uint) error {
	category, err := s.Get(siteID, id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM post_categories WHERE category_id = ?", category.ID).Error; err != nil {
			return err
		}
		return tx.Delete(category).Error
	})
}
