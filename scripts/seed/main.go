package main

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/quillpress/quillpress/internal/config"
	"github.com/quillpress/quillpress/internal/db"
	"github.com/quillpress/quillpress/internal/event"
	"github.com/quillpress/quillpress/internal/service"
)

// 演示数据生成器：创建默认站点、管理员和一组示例内容
func main() {
	cfg := config.Load()

	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	site, err := db.EnsureSite(cfg.SiteName, cfg.SiteDomain)
	if err != nil {
		log.Fatalf("failed to ensure site: %v", err)
	}
	if err := db.EnsureUser("admin", "admin123"); err != nil {
		log.Fatalf("failed to ensure admin user: %v", err)
	}

	tags := service.NewTagService(db.DB)
	posts := service.NewPostService(db.DB, tags, event.NewBus(), &cfg)
	categories := service.NewCategoryService(db.DB)

	var categoryIDs []uint
	for _, name := range []string{"News", "Releases", "Engineering"} {
		category, err := categories.Create(site.ID, name, "")
		if err != nil {
			// 重复执行脚本时分类已存在，跳过即可
			if errors.Is(err, service.ErrCategoryExists) {
				continue
			}
			log.Fatalf("failed to create category %q: %v", name, err)
		}
		categoryIDs = append(categoryIDs, category.ID)
	}

	samples := []service.PostInput{
		{
			Title:           "Welcome to QuillPress",
			Content:         "# Welcome\n\nThis post was generated by the seed script.",
			Status:          db.PostStatusActive,
			CommentsEnabled: true,
			IsFeatured:      true,
			CategoryIDs:     categoryIDs,
			TagNames:        []string{"announcement"},
		},
		{
			Title:           "Writing with Markdown",
			Content:         "Posts are written in **markdown** and rendered on the frontend.",
			Status:          db.PostStatusActive,
			CommentsEnabled: true,
			TagNames:        []string{"guide", "markdown"},
		},
		{
			Title:    "Work in Progress",
			Content:  "Drafts stay hidden from visitors until published.",
			Status:   db.PostStatusDraft,
			TagNames: []string{"guide"},
		},
	}

	future := time.Now().Add(72 * time.Hour)
	samples = append(samples, service.PostInput{
		Title:           "Scheduled for Later",
		Content:         "This post only appears once its publish time arrives.",
		Status:          db.PostStatusActive,
		CommentsEnabled: true,
		PublishedAt:     &future,
	})

	created := 0
	for _, input := range samples {
		if _, err := posts.Create(site.ID, input); err != nil {
			if errors.Is(err, service.ErrSlugTaken) {
				continue
			}
			log.Fatalf("failed to create post %q: %v", input.Title, err)
		}
		created++
	}

	fmt.Printf("seeded site %q with %d posts\n", site.Name, created)
}
