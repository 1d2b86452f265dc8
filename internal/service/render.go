package service

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(ghtml.WithHardWraps(), ghtml.WithXHTML()),
	)
	contentSanitizer = bluemonday.UGCPolicy()
	textOnlyPolicy   = bluemonday.StrictPolicy()
)

// RenderContent converts post content written in markdown to sanitized HTML
// for frontend display.
func RenderContent(content string) (string, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return contentSanitizer.Sanitize(buf.String()), nil
}

// SanitizeComment strips comment bodies down to safe inline text.
func SanitizeComment(body string) string {
	return strings.TrimSpace(textOnlyPolicy.Sanitize(body))
}

// Excerpt returns a tag-free snippet of the content, cut at length runes with
// an ellipsis when anything was dropped. Meant for index pages.
func Excerpt(content string, length int) string {
	if length <= 0 {
		length = 150
	}

	plain := html.UnescapeString(textOnlyPolicy.Sanitize(content))
	plain = strings.Join(strings.Fields(plain), " ")

	runes := []rune(plain)
	if len(runes) <= length {
		return plain
	}
	return strings.TrimSpace(string(runes[:length])) + "..."
}
