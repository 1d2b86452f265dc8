package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/quillpress/quillpress/internal/auth"
	"github.com/quillpress/quillpress/internal/config"
	"github.com/quillpress/quillpress/internal/db"
	"github.com/quillpress/quillpress/internal/event"
	"github.com/quillpress/quillpress/internal/handler"
	"github.com/quillpress/quillpress/internal/router"
	"github.com/quillpress/quillpress/internal/service"
	"github.com/quillpress/quillpress/internal/storage"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	if _, err := db.EnsureSite(cfg.SiteName, cfg.SiteDomain); err != nil {
		log.Fatalf("failed to ensure default site: %v", err)
	}
	if cfg.BootstrapUsername != "" && cfg.BootstrapPassword != "" {
		if err := db.EnsureUser(cfg.BootstrapUsername, cfg.BootstrapPassword); err != nil {
			log.Fatalf("failed to ensure bootstrap user: %v", err)
		}
	}

	store, err := buildStore(cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}

	bus := event.NewBus()
	bus.Subscribe(func(e event.Event) {
		log.Printf("event %s id=%s", e.Name(), e.EventID())
	})

	tags := service.NewTagService(db.DB)
	posts := service.NewPostService(db.DB, tags, bus, &cfg)
	categories := service.NewCategoryService(db.DB)
	images := service.NewImageService(db.DB, store, cfg.Images)
	files := service.NewFileService(db.DB, store, cfg.Files)
	comments := service.NewCommentService(db.DB, store, cfg.Comments, cfg.Images)

	api := handler.NewAPI(&cfg, &auth.StaffPolicy{}, posts, categories, tags, images, files, comments)

	// 设置并运行 Gin 服务器
	r := router.Setup(&cfg, db.DB, api)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}

func buildStore(cfg config.StorageConfig) (storage.Store, error) {
	if cfg.Driver == "s3" {
		return storage.NewS3Store(cfg)
	}
	return storage.NewDiskStore(cfg.PublicRoot, cfg.ManagedRoot), nil
}
