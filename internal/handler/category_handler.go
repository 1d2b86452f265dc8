package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quillpress/quillpress/internal/auth"
)

type categoryPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListCategories 返回站点分类列表
func (a *API) ListCategories(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionView, auth.EntityCategory) {
		return
	}

	page, perPage := parsePageQuery(c)
	if perPage <= 0 {
		perPage = a.cfg.Categories.PerPage
	}

	result, err := a.categories.List(currentSiteID(c), page, perPage)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories":  result.Categories,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
		"per_page":    result.PerPage,
	})
}

// CreateCategory 创建新分类
func (a *API) CreateCategory(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionCreate, auth.EntityCategory) {
		return
	}

	var payload categoryPayload
	if !bindJSON(c, &payload) {
		return
	}

	category, err := a.categories.Create(currentSiteID(c), payload.Name, payload.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// UpdateCategory 重命名分类
func (a *API) UpdateCategory(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionEdit, auth.EntityCategory) {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload categoryPayload
	if !bindJSON(c, &payload) {
		return
	}

	category, err := a.categories.Update(currentSiteID(c), id, payload.Name, payload.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory 删除分类并解除其与文章的关联
func (a *API) DeleteCategory(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionDelete, auth.EntityCategory) {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.categories.Delete(currentSiteID(c), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
