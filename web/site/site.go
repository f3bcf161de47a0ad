// Package site embeds the portal's page templates and static assets.
package site

import (
	"embed"
	"net/http"

	"github.com/pjecz/portal-notarias/pkg/web"
)

//go:embed layouts/*.html views static
var FS embed.FS

const (
	// Layout is the template every page executes.
	Layout = "base"
	// ViewError renders request failures and unmatched routes.
	ViewError = "error.html"

	layoutGlob = "layouts/*.html"
	viewDir    = "views"
)

// NewTemplateSet parses the layout and the error page together with views.
func NewTemplateSet(basePath string, views ...web.ViewDef) (*web.TemplateSet, error) {
	all := append([]web.ViewDef{{Template: ViewError, Title: "Error"}}, views...)
	return web.NewTemplateSet(FS, layoutGlob, viewDir, Layout, basePath, all)
}

// Static serves the embedded assets under urlPrefix.
func Static(urlPrefix string) (http.Handler, error) {
	return web.StaticServer(FS, "static", urlPrefix)
}
