package api

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed web
var webFS embed.FS

// EmbeddedPages returns the built-in web frontend.
func EmbeddedPages() fs.FS {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	return sub
}

func mountPages(r chi.Router, pages fs.FS) {
	if pages == nil {
		pages = EmbeddedPages()
	}

	r.Get("/", servePage(pages, "index.html"))
	r.Get("/dashboard", servePage(pages, "dashboard.html"))
	r.Get("/main", servePage(pages, "main.html"))

	if static, err := fs.Sub(pages, "static"); err == nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))
	}
}

func servePage(pages fs.FS, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, pages, name)
	}
}
