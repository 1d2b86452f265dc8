package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quillpress/quillpress/internal/auth"
	"github.com/quillpress/quillpress/internal/service"
)

// CreateComment 创建评论。访客需提供姓名与邮箱，图片附件受配置开关控制。
func (a *API) CreateComment(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionCreate, auth.EntityComment) {
		return
	}

	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	input := service.CommentInput{
		PostID:     postID,
		UserID:     currentUserID(c),
		GuestName:  c.PostForm("guest_name"),
		GuestEmail: c.PostForm("guest_email"),
		Body:       service.SanitizeComment(c.PostForm("body")),
	}

	if raw := strings.TrimSpace(c.PostForm("parent_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid parent_id")
			return
		}
		parentID := uint(parsed)
		input.ParentID = &parentID
	}

	if fileHeader, err := c.FormFile("image"); err == nil {
		if fileHeader.Size > int64(a.cfg.Images.MaxUploadKB)*1024 {
			respondError(c, http.StatusRequestEntityTooLarge, "image exceeds the upload limit")
			return
		}
		payload, err := fileHeader.Open()
		if err != nil {
			respondServiceError(c, err)
			return
		}
		defer payload.Close()
		input.ImageFilename = fileHeader.Filename
		input.ImageData = payload
	}

	comment, err := a.comments.Create(currentSiteID(c), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// ListComments 返回文章的顶层评论（含一层回复）
func (a *API) ListComments(c *gin.Context) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	page, perPage := parsePageQuery(c)
	if perPage <= 0 {
		perPage = a.cfg.Comments.PerPage
	}

	result, err := a.comments.ListForPost(currentSiteID(c), postID, page, perPage)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments":    result.Comments,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
		"per_page":    result.PerPage,
	})
}

// ListCommentReplies 返回某条评论的回复
func (a *API) ListCommentReplies(c *gin.Context) {
	parentID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	replies, err := a.comments.Replies(currentSiteID(c), parentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"replies": replies})
}

// ListPendingComments 返回待审核评论队列
func (a *API) ListPendingComments(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionEdit, auth.EntityComment) {
		return
	}

	page, perPage := parsePageQuery(c)
	if perPage <= 0 {
		perPage = a.cfg.Comments.PerPage
	}

	result, err := a.comments.ListPending(currentSiteID(c), page, perPage)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments":    result.Comments,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
		"per_page":    result.PerPage,
	})
}

// ApproveComment 审核通过评论
func (a *API) ApproveComment(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionEdit, auth.EntityComment) {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := a.comments.Approve(currentSiteID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

// RemoveCommentImage 移除评论图片但保留评论本身
func (a *API) RemoveCommentImage(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionEdit, auth.EntityComment) {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := a.comments.RemoveImage(currentSiteID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

// DeleteComment 删除评论及其图片附件
func (a *API) DeleteComment(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionDelete, auth.EntityComment) {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.comments.Delete(currentSiteID(c), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
