package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quillpress/quillpress/internal/auth"
	"github.com/quillpress/quillpress/internal/service"
)

// ListFiles 返回站点附件列表
func (a *API) ListFiles(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionView, auth.EntityFile) {
		return
	}

	page, perPage := parsePageQuery(c)
	if perPage <= 0 {
		perPage = a.cfg.Files.PerPage
	}

	result, err := a.files.List(currentSiteID(c), page, perPage)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"files":       result.Files,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
		"per_page":    result.PerPage,
	})
}

// UploadFile 处理附件上传请求
func (a *API) UploadFile(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionCreate, auth.EntityFile) {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "file payload is missing")
		return
	}

	if fileHeader.Size > int64(a.cfg.Files.MaxUploadKB)*1024 {
		respondError(c, http.StatusRequestEntityTooLarge, "file exceeds the upload limit")
		return
	}

	payload, err := fileHeader.Open()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	defer payload.Close()

	file, err := a.files.Upload(currentSiteID(c), service.FileUploadInput{
		Filename: fileHeader.Filename,
		Data:     payload,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"file": file})
}

// SetFileDisplayName 设置附件在某篇文章上的展示名称
func (a *API) SetFileDisplayName(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionEdit, auth.EntityFile) {
		return
	}

	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	fileID, err := parseUintParam(c, "file_id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload struct {
		DisplayName string `json:"display_name"`
	}
	if !bindJSON(c, &payload) {
		return
	}

	if err := a.files.SetDisplayName(currentSiteID(c), postID, fileID, payload.DisplayName); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DeleteFile 删除附件记录及其存储文件
func (a *API) DeleteFile(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionDelete, auth.EntityFile) {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.files.Delete(currentSiteID(c), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
