package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quillpress/quillpress/internal/config"
	"github.com/quillpress/quillpress/internal/handler"
)

// Setup 配置 Gin 引擎和路由
func Setup(cfg *config.AppConfig, gdb *gorm.DB, api *handler.API) *gin.Engine {
	r := gin.Default()

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("quillpress_session", store))
	r.Use(handler.ResolveSite(gdb))

	// Public assets are served straight off the disk root; the managed root
	// stays behind the application.
	if cfg.Storage.Driver == "disk" {
		r.Static(cfg.Storage.PublicURLPath, cfg.Storage.PublicRoot)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// 前台路由
	r.GET("/blog/:slug", api.ShowPost)
	if cfg.Comments.Enabled {
		r.GET("/posts/:id/comments", api.ListComments)
		r.POST("/posts/:id/comments", api.CreateComment)
		r.GET("/comments/:id/replies", api.ListCommentReplies)
	}

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.POST("/login", api.Login)
		admin.POST("/logout", api.Logout)

		// 需要认证的后台路由
		auth := admin.Group("/api")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/posts", api.ListPosts)
			auth.POST("/posts", api.CreatePost)
			auth.GET("/posts/:id", api.GetPost)
			auth.PUT("/posts/:id", api.UpdatePost)
			auth.DELETE("/posts/:id", api.DeletePost)
			auth.GET("/scheduled-posts", api.ListScheduledPosts)

			if cfg.Categories.Enabled {
				auth.GET("/categories", api.ListCategories)
				auth.POST("/categories", api.CreateCategory)
				auth.PUT("/categories/:id", api.UpdateCategory)
				auth.DELETE("/categories/:id", api.DeleteCategory)
			}

			if cfg.Tags.Enabled {
				auth.GET("/tags", api.ListTags)
				auth.DELETE("/tags/:id", api.DeleteTag)
			}

			if cfg.Images.Enabled {
				auth.GET("/images", api.ListImages)
				auth.POST("/images", api.UploadImage)
				auth.PUT("/images/:id", api.UpdateImage)
				auth.DELETE("/images/:id", api.DeleteImage)
			}

			if cfg.Files.Enabled {
				auth.GET("/files", api.ListFiles)
				auth.POST("/files", api.UploadFile)
				auth.DELETE("/files/:id", api.DeleteFile)
				auth.PUT("/posts/:id/files/:file_id", api.SetFileDisplayName)
			}

			if cfg.Comments.Enabled {
				auth.GET("/pending-comments", api.ListPendingComments)
				auth.PUT("/comments/:id/approve", api.ApproveComment)
				auth.DELETE("/comments/:id/image", api.RemoveCommentImage)
				auth.DELETE("/comments/:id", api.DeleteComment)
			}
		}
	}

	return r
}
