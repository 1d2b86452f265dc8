package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quillpress/quillpress/internal/auth"
)

// ListTags 返回站点标签列表
func (a *API) ListTags(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionView, auth.EntityTag) {
		return
	}

	page, perPage := parsePageQuery(c)
	if perPage <= 0 {
		perPage = a.cfg.Tags.PerPage
	}

	result, err := a.tags.List(currentSiteID(c), page, perPage)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tags":        result.Tags,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
		"per_page":    result.PerPage,
	})
}

// DeleteTag 删除未被文章引用的标签
func (a *API) DeleteTag(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionDelete, auth.EntityTag) {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.tags.Delete(currentSiteID(c), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
