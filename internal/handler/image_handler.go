package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quillpress/quillpress/internal/auth"
	"github.com/quillpress/quillpress/internal/service"
)

// ListImages 返回站点图片列表
func (a *API) ListImages(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionView, auth.EntityImage) {
		return
	}

	page, perPage := parsePageQuery(c)
	if perPage <= 0 {
		perPage = a.cfg.Images.PerPage
	}

	result, err := a.images.List(currentSiteID(c), page, perPage)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"images":      result.Images,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
		"per_page":    result.PerPage,
	})
}

// UploadImage 处理图片上传请求
func (a *API) UploadImage(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionCreate, auth.EntityImage) {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "image payload is missing")
		return
	}

	if fileHeader.Size > int64(a.cfg.Images.MaxUploadKB)*1024 {
		respondError(c, http.StatusRequestEntityTooLarge, "image exceeds the upload limit")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(c, http.StatusBadRequest, "only image uploads are allowed")
		return
	}

	payload, err := fileHeader.Open()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	defer payload.Close()

	img, err := a.images.Upload(currentSiteID(c), service.ImageUploadInput{
		Filename: fileHeader.Filename,
		Data:     payload,
		Caption:  c.PostForm("caption"),
		AltText:  c.PostForm("alt_text"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"image": img})
}

// UpdateImage 更新图片的说明与替代文本
func (a *API) UpdateImage(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionEdit, auth.EntityImage) {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload struct {
		Caption string `json:"caption"`
		AltText string `json:"alt_text"`
	}
	if !bindJSON(c, &payload) {
		return
	}

	img, err := a.images.UpdateDetails(currentSiteID(c), id, payload.Caption, payload.AltText)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"image": img})
}

// DeleteImage 删除图片记录及其存储文件
func (a *API) DeleteImage(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionDelete, auth.EntityImage) {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.images.Delete(currentSiteID(c), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
