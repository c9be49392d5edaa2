package web

import (
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templateFuncs = template.FuncMap{
	"join":  strings.Join,
	"lower": strings.ToLower,
}

func loadTemplates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html"))
}

// page renders a full page with the shared layout data.
func (h *handler) page(c *gin.Context, code int, name string, data gin.H) {
	data["site"] = h.site
	data["path"] = c.Request.URL.Path
	data["year"] = time.Now().Year()
	c.HTML(code, name, data)
}

func (h *handler) notFound(c *gin.Context) {
	h.page(c, http.StatusNotFound, "not-found.html", gin.H{"title": "Page Not Found"})
}
