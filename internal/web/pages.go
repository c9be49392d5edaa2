package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const previewProjects = 3

func (h *handler) home(c *gin.Context) {
	h.page(c, http.StatusOK, "index.html", gin.H{
		"title":    h.site.Profile.Name,
		"projects": h.site.PreviewProjects(previewProjects),
		"more":     len(h.site.Projects) > previewProjects,
	})
}

func (h *handler) about(c *gin.Context) {
	h.page(c, http.StatusOK, "about.html", gin.H{"title": "About Me"})
}

func (h *handler) skills(c *gin.Context) {
	h.page(c, http.StatusOK, "skills.html", gin.H{"title": "Skills"})
}

func (h *handler) projects(c *gin.Context) {
	h.page(c, http.StatusOK, "projects.html", gin.H{
		"title":    "Projects",
		"projects": h.site.Projects,
	})
}

func (h *handler) project(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.notFound(c)
		return
	}
	p, ok := h.site.Project(id)
	if !ok {
		h.notFound(c)
		return
	}
	h.page(c, http.StatusOK, "project.html", gin.H{
		"title":   p.Title,
		"project": p,
	})
}

func (h *handler) contactPage(c *gin.Context) {
	h.page(c, http.StatusOK, "contact.html", gin.H{"title": "Contact Me"})
}

func (h *handler) privacy(c *gin.Context) {
	h.page(c, http.StatusOK, "privacy.html", gin.H{
		"title":     "Privacy Policy",
		"retention": h.cfg.VisitorRetention.String(),
	})
}

// HTMX fragment
func (h *handler) workContent(c *gin.Context) {
	c.HTML(http.StatusOK, "timeline.html", gin.H{
		"heading": "Work Experience",
		"entries": h.site.Experience,
	})
}

// HTMX fragment
func (h *handler) educationContent(c *gin.Context) {
	c.HTML(http.StatusOK, "timeline.html", gin.H{
		"heading": "Education",
		"entries": h.site.Education,
	})
}
