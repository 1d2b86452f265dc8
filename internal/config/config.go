package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig aggregates every option the service recognizes. It is built once
// at process start and passed by reference into each component that needs it.
type AppConfig struct {
	ListenAddr    string
	Port          string
	DatabasePath  string
	SessionSecret string
	GinMode       string

	BootstrapUsername string
	BootstrapPassword string

	// SiteName and SiteDomain seed the default site on first start.
	SiteName   string
	SiteDomain string

	Storage    StorageConfig
	Posts      PostsConfig
	Categories RelationConfig
	Tags       RelationConfig
	Images     AssetConfig
	Files      AssetConfig
	Comments   CommentsConfig
}

// StorageConfig describes the physical backends behind the public and managed
// storage locations.
type StorageConfig struct {
	// Driver selects the byte-level backend: "disk" or "s3".
	Driver string

	PublicRoot    string
	ManagedRoot   string
	PublicURLPath string

	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
}

// PostsConfig holds post listing options.
type PostsConfig struct {
	PerPage           int
	SeparateScheduled bool
}

// RelationConfig holds the enable flag and page size shared by categories and tags.
type RelationConfig struct {
	Enabled bool
	PerPage int
}

// AssetConfig holds upload options for images and files.
type AssetConfig struct {
	Enabled bool
	PerPage int

	// StorageLocation is "public" or "managed".
	StorageLocation string

	// StoragePath is the sub-path below the selected storage root.
	StoragePath string

	// FilenameFormat supports the [date], [datetime] and [filename] tokens.
	FilenameFormat string

	// MaxUploadKB bounds the accepted payload size in kilobytes.
	MaxUploadKB int
}

// CommentsConfig holds comment moderation options.
type CommentsConfig struct {
	Enabled          bool
	PerPage          int
	RequiresApproval bool
	AllowGuests      bool
	AllowImages      bool
}

// Load reads the application configuration from .env and environment
// variables, providing safe defaults for anything missing.
func Load() AppConfig {
	_ = godotenv.Load()

	port := getEnv("PORT", "8080")
	listenAddr := getEnv("LISTEN_ADDR", fmt.Sprintf(":%s", port))

	return AppConfig{
		ListenAddr:    listenAddr,
		Port:          port,
		DatabasePath:  getEnv("DATABASE_PATH", "quillpress.db"),
		SessionSecret: getEnv("SESSION_SECRET", "quillpress-dev-secret"),
		GinMode:       getEnv("GIN_MODE", "release"),

		BootstrapUsername: getEnv("BOOTSTRAP_USER_NAME", ""),
		BootstrapPassword: getEnv("BOOTSTRAP_PASSWORD", ""),

		SiteName:   getEnv("SITE_NAME", "QuillPress"),
		SiteDomain: getEnv("SITE_DOMAIN", "localhost"),

		Storage: StorageConfig{
			Driver:        getEnv("STORAGE_DRIVER", "disk"),
			PublicRoot:    getEnv("STORAGE_PUBLIC_ROOT", "web/public"),
			ManagedRoot:   getEnv("STORAGE_MANAGED_ROOT", "storage/app"),
			PublicURLPath: getEnv("STORAGE_PUBLIC_URL_PATH", "/public"),
			S3Region:      getEnv("S3_REGION", "us-east-1"),
			S3Bucket:      getEnv("S3_BUCKET", "quillpress"),
			S3AccessKey:   getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey:   getEnv("S3_SECRET_KEY", ""),
			S3Endpoint:    getEnv("S3_ENDPOINT", ""),
		},

		Posts: PostsConfig{
			PerPage:           getEnvInt("POSTS_PER_PAGE", 10),
			SeparateScheduled: getEnvBool("POSTS_SEPARATE_SCHEDULED", false),
		},
		Categories: RelationConfig{
			Enabled: getEnvBool("CATEGORIES_ENABLED", true),
			PerPage: getEnvInt("CATEGORIES_PER_PAGE", 10),
		},
		Tags: RelationConfig{
			Enabled: getEnvBool("TAGS_ENABLED", true),
			PerPage: getEnvInt("TAGS_PER_PAGE", 15),
		},
		Images: AssetConfig{
			Enabled:         getEnvBool("IMAGES_ENABLED", true),
			PerPage:         getEnvInt("IMAGES_PER_PAGE", 15),
			StorageLocation: getEnv("IMAGES_STORAGE_LOCATION", "managed"),
			StoragePath:     getEnv("IMAGES_STORAGE_PATH", "images/blog"),
			FilenameFormat:  getEnv("IMAGES_FILENAME_FORMAT", "[datetime]_[filename]"),
			MaxUploadKB:     getEnvInt("IMAGES_MAX_UPLOAD_KB", 10000),
		},
		Files: AssetConfig{
			Enabled:         getEnvBool("FILES_ENABLED", true),
			PerPage:         getEnvInt("FILES_PER_PAGE", 15),
			StorageLocation: getEnv("FILES_STORAGE_LOCATION", "managed"),
			StoragePath:     getEnv("FILES_STORAGE_PATH", "files/blog"),
			FilenameFormat:  getEnv("FILES_FILENAME_FORMAT", "[datetime]_[filename]"),
			MaxUploadKB:     getEnvInt("FILES_MAX_UPLOAD_KB", 10000),
		},
		Comments: CommentsConfig{
			Enabled:          getEnvBool("COMMENTS_ENABLED", true),
			PerPage:          getEnvInt("COMMENTS_PER_PAGE", 15),
			RequiresApproval: getEnvBool("COMMENTS_REQUIRE_APPROVAL", true),
			AllowGuests:      getEnvBool("COMMENTS_ALLOW_GUESTS", true),
			AllowImages:      getEnvBool("COMMENTS_ALLOW_IMAGES", false),
		},
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
