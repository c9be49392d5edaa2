package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VisitRecorder persists one page view.
type VisitRecorder interface {
	RecordVisit(ctx context.Context, hashedIP, userAgent, path string, at time.Time) error
}

// IPHasher turns an address into a salted, truncated digest so raw IPs are never stored.
type IPHasher struct {
	salt string
}

func NewIPHasher(salt string) IPHasher {
	return IPHasher{salt: salt}
}

func (h IPHasher) Hash(ip string) string {
	sum := sha256.Sum256([]byte(ip + h.salt))
	return hex.EncodeToString(sum[:])[:16]
}

var untrackedPrefixes = []string{
	"/static/",
	"/images/",
	"/admin",
	"/favicon",
	"/privacy",
	"/metrics",
	"/health",
	"/contact/",
	"/api/",
}

// VisitorTracking records page views in the background. Static assets, admin
// pages, fragment endpoints and requests carrying "DNT: 1" are skipped.
func VisitorTracking(rec VisitRecorder, hasher IPHasher, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != "GET" || c.GetHeader("DNT") == "1" || c.GetHeader("HX-Request") == "true" {
			c.Next()
			return
		}
		for _, prefix := range untrackedPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		hashed := hasher.Hash(c.ClientIP())
		ua := c.GetHeader("User-Agent")
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := rec.RecordVisit(ctx, hashed, ua, path, time.Now()); err != nil {
				log.Warn("error recording visitor", zap.Error(err))
			}
		}()
		c.Next()
	}
}
