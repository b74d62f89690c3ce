// Package web serves the server-rendered shell: page templates and the
// embedded static assets.
package web

import (
	"embed"
	"io/fs"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

//go:embed static/*
var staticFiles embed.FS

// StaticFS returns the embedded static assets with the static folder as root.
func StaticFS() (fs.FS, error) {
	return fs.Sub(staticFiles, "static")
}

// RegisterStaticRoutes serves the embedded assets under /static.
func RegisterStaticRoutes(e *echo.Echo) error {
	staticFS, err := StaticFS()
	if err != nil {
		return err
	}
	e.StaticFS("/static", staticFS)
	return nil
}
