// Package web serves the portfolio pages, the HTMX and JSON contact endpoints
// and the admin area.
package web

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/store"
	"github.com/Zachkp/portfolio/internal/web/middleware"
)

const (
	sessionName = "portfolio_session"
	serviceName = "portfolio"
)

type Deps struct {
	Config *config.Config
	Site   *content.Site
	Forms  *contact.Registry
	Store  *store.Store
	Redis  *goredis.Client // optional
	Logger *zap.Logger
}

type handler struct {
	cfg     *config.Config
	site    *content.Site
	forms   *contact.Registry
	store   *store.Store
	log     *zap.Logger
	hasher  middleware.IPHasher
	limiter *middleware.RateLimiter
	login   *middleware.RateLimiter
}

// NewRouter builds the gin engine with every route and middleware.
func NewRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	log := deps.Logger.With(zap.String("component", "web"))

	r := gin.New()
	// Handlers pass *gin.Context on as a context.Context; let it see the request's values and deadline.
	r.ContextWithFallback = true
	r.SetHTMLTemplate(loadTemplates())

	h := &handler{
		cfg:    cfg,
		site:   deps.Site,
		forms:  deps.Forms,
		store:  deps.Store,
		log:    log,
		hasher: middleware.NewIPHasher(cfg.SessionSecret),
		limiter: middleware.NewRateLimiter(middleware.RateLimitConfig{
			Limit:     cfg.ContactRateLimit,
			Window:    cfg.RateLimitWindow(),
			KeyPrefix: "rl:contact:",
		}, deps.Redis, log),
		login: middleware.NewRateLimiter(middleware.RateLimitConfig{
			Limit:     5,
			Window:    time.Minute,
			KeyPrefix: "rl:login:",
		}, deps.Redis, log),
	}

	if cfg.MetricsEnabled {
		p := ginprometheus.NewPrometheus(serviceName)
		p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
			if route := c.FullPath(); route != "" {
				return route
			}
			return "unmatched"
		}
		p.Use(r)
	}

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.SecurityHeaders(cfg.Production()))
	r.Use(sessions.Sessions(sessionName, newSessionStore(cfg)))
	r.Use(middleware.VisitorTracking(deps.Store, h.hasher, log))
	r.Use(middleware.ErrorHandler(log))

	r.Static("/images", "./images")
	r.Static("/static", "./static")

	r.GET("/health", h.health)

	// Pages
	r.GET("/", h.home)
	r.GET("/about", h.about)
	r.GET("/skills", h.skills)
	r.GET("/projects", h.projects)
	r.GET("/projects/:id", h.project)
	r.GET("/contact", h.contactPage)
	r.GET("/privacy", h.privacy)
	r.GET("/work-content", h.workContent)
	r.GET("/education-content", h.educationContent)

	// Contact form (HTMX)
	r.GET("/contact-form", h.contactForm)
	r.POST("/contact/field", h.updateField)
	r.POST("/contact", h.limiter.Middleware(), h.submitContact)
	r.GET("/contact/status", h.contactStatus)

	// Contact form (JSON)
	api := r.Group("/api")
	api.POST("/contact", h.limiter.Middleware(), h.submitContactAPI)

	h.registerAdminRoutes(r)

	r.NoRoute(h.notFound)

	return r
}

func newSessionStore(cfg *config.Config) sessions.Store {
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((7 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

func (h *handler) health(c *gin.Context) {
	if err := h.store.Ping(c); err != nil {
		h.log.Error("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"active_forms": h.forms.Len(),
	})
}
