package web

import (
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// render writes the named page. Template failures are a server bug, not a
// user error; they log and 500.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name+".html", data); err != nil {
		s.logger.Error("rendering template failed", "template", name, "err", err)
		http.Error(w, "something went wrong", http.StatusInternalServerError)
	}
}
