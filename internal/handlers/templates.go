package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"sync"

	"raciones-dashboard/internal/config"
	"raciones-dashboard/internal/present"
	"raciones-dashboard/internal/views"
)

var (
	templates     *template.Template
	templatesErr  error
	templatesOnce sync.Once
	cfg           *config.Config
)

// SetConfig sets the config for debug logging
func SetConfig(c *config.Config) {
	cfg = c
}

func debugf(format string, v ...interface{}) {
	if cfg != nil {
		cfg.Debugf(format, v...)
	}
}

// InitTemplates parses the embedded templates. Call it at startup so that a
// broken template fails the process instead of the first request.
func InitTemplates() error {
	templatesOnce.Do(func() {
		entries, err := fs.ReadDir(views.TemplatesFS, ".")
		if err != nil {
			templatesErr = fmt.Errorf("failed to read template directory: %w", err)
			return
		}
		count := 0
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
				debugf("template file: %s", entry.Name())
				count++
			}
		}
		if count == 0 {
			templatesErr = fmt.Errorf("no template files found in embedded filesystem")
			return
		}

		funcMap := template.FuncMap{
			"rate": present.FormatRate,
		}
		templates, templatesErr = template.New("").Funcs(funcMap).ParseFS(views.TemplatesFS, "*.html")
	})
	return templatesErr
}

// Template file to the content block it defines.
var contentTemplateMap = map[string]string{
	"login.html":     "login_content",
	"dashboard.html": "dashboard_content",
	"program.html":   "program_content",
}

// Templates that use auth_layout instead of main layout
var authLayoutTemplates = map[string]bool{
	"login.html": true,
}

func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	if err := InitTemplates(); err != nil {
		log.Printf("ERROR: Templates not initialized: %v", err)
		http.Error(w, "Templates not initialized", http.StatusInternalServerError)
		return
	}

	contentTemplateName, ok := contentTemplateMap[name]
	if !ok || templates.Lookup(contentTemplateName) == nil {
		log.Printf("ERROR: Content template for %s not found", name)
		http.Error(w, fmt.Sprintf("Content template for %s not found", name), http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = map[string]interface{}{}
	}
	data["ContentTemplate"] = contentTemplateName
	if _, ok := data["AuthEnabled"]; !ok && cfg != nil {
		data["AuthEnabled"] = cfg.AuthEnabled()
	}

	layoutName := "layout"
	if authLayoutTemplates[name] {
		layoutName = "auth_layout"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, layoutName, data); err != nil {
		log.Printf("ERROR: Template execute error: %v", err)
		http.Error(w, fmt.Sprintf("Template execute error: %v", err), http.StatusInternalServerError)
		return
	}
	debugf("rendered %s for %s", name, r.URL.Path)
}
