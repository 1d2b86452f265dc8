package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quillpress/quillpress/internal/auth"
	"github.com/quillpress/quillpress/internal/service"
)

type postPayload struct {
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Content         string     `json:"content"`
	Status          string     `json:"status"`
	Format          string     `json:"format"`
	PublishedAt     *time.Time `json:"published_at"`
	IsFeatured      bool       `json:"is_featured"`
	ShowFeatured    bool       `json:"show_featured"`
	CommentsEnabled bool       `json:"comments_enabled"`
	FeaturedImageID *uint      `json:"featured_image_id"`
	CategoryIDs     []uint     `json:"category_ids"`
	Tags            []string   `json:"tags"`
	FileIDs         []uint     `json:"file_ids"`
}

func (p postPayload) toInput(authorID *uint) service.PostInput {
	return service.PostInput{
		Title:           p.Title,
		Slug:            p.Slug,
		Content:         p.Content,
		Status:          p.Status,
		Format:          p.Format,
		PublishedAt:     p.PublishedAt,
		IsFeatured:      p.IsFeatured,
		ShowFeatured:    p.ShowFeatured,
		CommentsEnabled: p.CommentsEnabled,
		FeaturedImageID: p.FeaturedImageID,
		AuthorID:        authorID,
		CategoryIDs:     p.CategoryIDs,
		TagNames:        p.Tags,
		FileIDs:         p.FileIDs,
	}
}

// ListPosts 返回站点文章列表，精选优先、按发布时间倒序
func (a *API) ListPosts(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionView, auth.EntityPost) {
		return
	}

	page, perPage := parsePageQuery(c)
	result, err := a.posts.List(currentSiteID(c), service.PostFilter{Page: page, PerPage: perPage})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":       result.Posts,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
		"per_page":    result.PerPage,
	})
}

// ListScheduledPosts 返回发布时间在未来的文章，最早的在前
func (a *API) ListScheduledPosts(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionView, auth.EntityPost) {
		return
	}

	page, perPage := parsePageQuery(c)
	result, err := a.posts.Scheduled(currentSiteID(c), service.PostFilter{Page: page, PerPage: perPage})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":       result.Posts,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
		"per_page":    result.PerPage,
	})
}

// GetPost 获取单篇文章
func (a *API) GetPost(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionView, auth.EntityPost) {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	post, err := a.posts.Get(currentSiteID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

// CreatePost 创建新文章
func (a *API) CreatePost(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionCreate, auth.EntityPost) {
		return
	}

	var payload postPayload
	if !bindJSON(c, &payload) {
		return
	}

	post, err := a.posts.Create(currentSiteID(c), payload.toInput(currentUserID(c)))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// UpdatePost 更新现有文章
func (a *API) UpdatePost(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionEdit, auth.EntityPost) {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload postPayload
	if !bindJSON(c, &payload) {
		return
	}

	post, err := a.posts.Update(currentSiteID(c), id, payload.toInput(currentUserID(c)))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

// DeletePost 软删除文章
func (a *API) DeletePost(c *gin.Context) {
	if !a.requireCapability(c, auth.ActionDelete, auth.EntityPost) {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.posts.Delete(currentSiteID(c), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ShowPost 前台按 slug 展示文章，渲染正文并记录登录用户的阅读
func (a *API) ShowPost(c *gin.Context) {
	siteID := currentSiteID(c)
	post, err := a.posts.GetBySlug(siteID, c.Param("slug"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	userID := currentUserID(c)
	if post.IsDraft() && userID == nil {
		respondError(c, http.StatusNotFound, service.ErrPostNotFound.Error())
		return
	}

	rendered, err := service.RenderContent(post.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if userID != nil {
		if err := a.posts.RecordView(siteID, post.ID, *userID); err != nil {
			respondServiceError(c, err)
			return
		}
	}

	response := gin.H{
		"post":    post,
		"html":    rendered,
		"excerpt": service.Excerpt(post.Content, 150),
	}

	if a.cfg.Comments.Enabled && post.CommentsEnabled {
		page, perPage := parsePageQuery(c)
		if perPage <= 0 {
			perPage = a.cfg.Comments.PerPage
		}
		comments, err := a.comments.ListForPost(siteID, post.ID, page, perPage)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		response["comments"] = comments.Comments
	}

	c.JSON(http.StatusOK, response)
}
