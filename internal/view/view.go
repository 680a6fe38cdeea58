// Package view holds the HTML templates of the job board.
package view

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

const (
	Layout = "layouts/main"

	Home       = "home"
	Employers  = "employers"
	Categories = "categories"
	Category   = "category"
	Job        = "job"
	JobAdded   = "job_added"
	NotFound   = "404"
	Internal   = "500"
)

//go:embed templates
var templates embed.FS

// NewEngine returns the fiber view engine over the embedded templates.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	return html.NewFileSystem(http.FS(sub), ".html")
}
