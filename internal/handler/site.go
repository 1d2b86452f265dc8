package handler

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quillpress/quillpress/internal/db"
)

const siteContextKey = "site_id"

// ResolveSite determines the active site for the request and stores its id in
// the gin context. The site is matched by request host; without a match the
// lowest-id site acts as the default. Every downstream query is scoped by the
// resolved id, never by ambient state.
func ResolveSite(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		host := c.Request.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		host = strings.ToLower(strings.TrimSpace(host))

		var site db.Site
		err := gdb.Where("domain = ?", host).First(&site).Error
		if err != nil {
			err = gdb.Order("id asc").First(&site).Error
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, "no site configured")
			c.Abort()
			return
		}

		c.Set(siteContextKey, site.ID)
		c.Next()
	}
}

// currentSiteID returns the site id resolved for this request.
func currentSiteID(c *gin.Context) uint {
	return c.GetUint(siteContextKey)
}
