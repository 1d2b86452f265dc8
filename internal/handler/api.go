package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quillpress/quillpress/internal/auth"
	"github.com/quillpress/quillpress/internal/config"
	"github.com/quillpress/quillpress/internal/service"
	"github.com/quillpress/quillpress/internal/storage"
)

// API bundles the services the handlers delegate to. Handlers stay thin:
// they adapt requests, run the capability check, and map service errors to
// HTTP statuses.
type API struct {
	cfg        *config.AppConfig
	authz      auth.Authorizer
	posts      *service.PostService
	categories *service.CategoryService
	tags       *service.TagService
	images     *service.ImageService
	files      *service.FileService
	comments   *service.CommentService
}

// NewAPI creates the handler set.
func NewAPI(
	cfg *config.AppConfig,
	authz auth.Authorizer,
	posts *service.PostService,
	categories *service.CategoryService,
	tags *service.TagService,
	images *service.ImageService,
	files *service.FileService,
	comments *service.CommentService,
) *API {
	return &API{
		cfg:        cfg,
		authz:      authz,
		posts:      posts,
		categories: categories,
		tags:       tags,
		images:     images,
		files:      files,
		comments:   comments,
	}
}

// requireCapability runs the capability check for the acting user and writes
// the denial response itself when the check fails.
func (a *API) requireCapability(c *gin.Context, action auth.Action, entity string) bool {
	if !a.authz.Can(currentUserID(c), action, entity) {
		respondError(c, http.StatusForbidden, "access denied")
		return false
	}
	return true
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondServiceError maps service sentinels onto HTTP statuses: validation
// failures and uniqueness conflicts come back 422, missing entities 404,
// refused operations 403, and configuration faults 500 after being logged.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrTagNotFound),
		errors.Is(err, service.ErrImageNotFound),
		errors.Is(err, service.ErrFileNotFound),
		errors.Is(err, service.ErrCommentNotFound):
		respondError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrSlugInvalid),
		errors.Is(err, service.ErrSlugTaken),
		errors.Is(err, service.ErrStatusInvalid),
		errors.Is(err, service.ErrFormatInvalid),
		errors.Is(err, service.ErrCategoryUnknown),
		errors.Is(err, service.ErrAttachedFileLost),
		errors.Is(err, service.ErrCategoryNameRequired),
		errors.Is(err, service.ErrCategoryExists),
		errors.Is(err, service.ErrTagInUse),
		errors.Is(err, service.ErrImagePayloadMissing),
		errors.Is(err, service.ErrFilePayloadMissing),
		errors.Is(err, service.ErrFileNotAttached),
		errors.Is(err, service.ErrCommentBodyRequired),
		errors.Is(err, service.ErrGuestDetailsRequired),
		errors.Is(err, service.ErrInvalidParent):
		respondError(c, http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, service.ErrGuestsNotAllowed),
		errors.Is(err, service.ErrCommentImageDenied),
		errors.Is(err, service.ErrCommentsDisabled):
		respondError(c, http.StatusForbidden, err.Error())

	case errors.Is(err, storage.ErrUnknownLocation):
		log.Printf("storage misconfiguration: %v", err)
		respondError(c, http.StatusInternalServerError, "storage is misconfigured")

	default:
		log.Printf("unexpected error: %v", err)
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

func parsePageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(strings.TrimSpace(c.Query("page")))
	perPage, _ := strconv.Atoi(strings.TrimSpace(c.Query("per_page")))
	return page, perPage
}
