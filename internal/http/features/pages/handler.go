// Package pages renders the minimal server-side pages the access
// control middleware gates. The real frontend lives elsewhere; these
// templates exist so every route zone resolves to a page.
package pages

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/jirani/jirani-auth/internal/http/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler handles page rendering.
type Handler struct {
	templates *template.Template
}

// NewHandler creates a new pages handler.
func NewHandler() (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{templates: tmpl}, nil
}

// PageData holds data for template rendering.
type PageData struct {
	Title string
	Name  string
}

// Home renders the landing page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, "home.html", PageData{Title: "Jirani"})
}

// Login renders the login page.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login.html", PageData{Title: "Sign In"})
}

// Register renders the registration page.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	h.render(w, "register.html", PageData{Title: "Create Account"})
}

// Dashboard renders the member dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := PageData{Title: "Dashboard"}
	if sess, ok := middleware.GetSessionUser(r.Context()); ok {
		data.Name = sess.Name
	}
	h.render(w, "dashboard.html", data)
}

// Admin renders the admin console.
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	h.render(w, "admin.html", PageData{Title: "Admin"})
}

// Maintenance renders the maintenance page.
func (h *Handler) Maintenance(w http.ResponseWriter, r *http.Request) {
	h.render(w, "maintenance.html", PageData{Title: "Maintenance"})
}

func (h *Handler) render(w http.ResponseWriter, tmpl string, data PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, tmpl, data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
