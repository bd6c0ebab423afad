package ui

import (
	"html/template"
	"net/http"

	"discscore/internal/report"

	"github.com/gin-gonic/gin"
)

// handleDualReport solves a dual query from the query string and renders
// the bands as an HTML page, markdown, a bare SVG strip or JSON
func (s *Server) handleDualReport(c *gin.Context) {
	var form dualForm
	if err := c.ShouldBindQuery(&form); err != nil {
		s.respondBindError(c, err)
		return
	}

	out, err := s.container.SampleSize.SolveDual(c.Request.Context(), form.query())
	if err != nil {
		s.respondError(c, err)
		return
	}
	bands := *out.Bands

	switch form.Format {
	case "md":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.DualMarkdown(bands)))
	case "svg":
		c.Data(http.StatusOK, "image/svg+xml", []byte(report.BandsSVG(bands, 800, 60)))
	case "json":
		c.JSON(http.StatusOK, out)
	default:
		s.renderTemplate(c, "report.html", gin.H{
			"Bands": bands,
			"Steps": out.Result.Steps,
			"Body":  template.HTML(report.ToHTML(report.DualMarkdown(bands))),
			"Chart": template.HTML(report.BandsSVG(bands, 800, 60)),
		})
	}
}
