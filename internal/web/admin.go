package web

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/store"
)

const adminSessionKey = "admin"

type adminStats struct {
	*store.Stats
	ActiveForms int `json:"active_forms"`
}

func (h *handler) registerAdminRoutes(r *gin.Engine) {
	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{"title": "Admin Login"})
	})
	r.POST("/admin/login", h.login.Middleware(), h.adminLogin)
	r.GET("/admin/logout", h.adminLogout)

	admin := r.Group("/admin")
	admin.Use(h.adminAuth())
	admin.GET("/dashboard", h.adminDashboard)
	admin.GET("/api/stats", h.adminStatsJSON)
	admin.GET("/visitors", h.adminVisitors)
	admin.GET("/export/stats", h.adminExport)
	admin.POST("/privacy/cleanup", h.adminCleanup)
}

func (h *handler) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ok, _ := sessions.Default(c).Get(adminSessionKey).(bool); !ok {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (h *handler) adminLogin(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.cfg.AdminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(h.cfg.AdminPassword)) == 1
	if !userOK || !passOK {
		h.log.Warn("failed admin login attempt", zap.String("visitor", h.hasher.Hash(c.ClientIP())))
		c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
			"title": "Admin Login",
			"error": "Invalid credentials",
		})
		return
	}

	session := sessions.Default(c)
	session.Set(adminSessionKey, true)
	if err := session.Save(); err != nil {
		h.adminError(c, "Failed to start session", err)
		return
	}
	h.log.Info("admin login successful", zap.String("visitor", h.hasher.Hash(c.ClientIP())))
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

func (h *handler) adminLogout(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(adminSessionKey)
	if err := session.Save(); err != nil {
		h.log.Warn("error clearing admin session", zap.Error(err))
	}
	h.log.Info("admin logout", zap.String("visitor", h.hasher.Hash(c.ClientIP())))
	c.Redirect(http.StatusFound, "/admin/login")
}

func (h *handler) stats(c *gin.Context) (*adminStats, error) {
	s, err := h.store.Stats(c.Request.Context(), time.Now())
	if err != nil {
		return nil, err
	}
	return &adminStats{Stats: s, ActiveForms: h.forms.Len()}, nil
}

func (h *handler) adminDashboard(c *gin.Context) {
	stats, err := h.stats(c)
	if err != nil {
		h.adminError(c, "Failed to load statistics", err)
		return
	}
	c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
		"title": "Dashboard",
		"stats": stats,
	})
}

func (h *handler) adminStatsJSON(c *gin.Context) {
	stats, err := h.stats(c)
	if err != nil {
		h.log.Error("error loading admin stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *handler) adminVisitors(c *gin.Context) {
	visitors, err := h.store.RecentVisitors(c.Request.Context(), 200)
	if err != nil {
		h.adminError(c, "Failed to load visitors", err)
		return
	}
	c.HTML(http.StatusOK, "admin-visitors.html", gin.H{
		"title":    "Visitors",
		"visitors": visitors,
	})
}

func (h *handler) adminExport(c *gin.Context) {
	stats, err := h.stats(c)
	if err != nil {
		h.log.Error("error exporting admin stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
		return
	}
	c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
	h.log.Info("admin stats exported", zap.String("visitor", h.hasher.Hash(c.ClientIP())))
	c.JSON(http.StatusOK, stats)
}

// adminCleanup deletes visitor records older than the retention period.
func (h *handler) adminCleanup(c *gin.Context) {
	cutoff := time.Now().Add(-h.cfg.VisitorRetention)
	deleted, err := h.store.PurgeVisitorsBefore(c.Request.Context(), cutoff)
	if err != nil {
		h.log.Error("error cleaning up visitor data", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Privacy cleanup failed"})
		return
	}
	h.log.Info("privacy cleanup", zap.Int64("deleted", deleted))
	c.JSON(http.StatusOK, gin.H{
		"message": "Privacy cleanup complete",
		"deleted": deleted,
	})
}

func (h *handler) adminError(c *gin.Context, message string, err error) {
	h.log.Error(message, zap.Error(err))
	c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
		"title": "Error",
		"error": message,
	})
}
