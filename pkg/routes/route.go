package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Get and Post build routes for the two methods the portal serves.
func Get(pattern string, h http.HandlerFunc) Route  { return Route{Method: http.MethodGet, Pattern: pattern, Handler: h} }
func Post(pattern string, h http.HandlerFunc) Route { return Route{Method: http.MethodPost, Pattern: pattern, Handler: h} }

// GetPost returns the same handler registered for GET and POST, as used by
// form pages and DataTables endpoints.
func GetPost(pattern string, h http.HandlerFunc) []Route {
	return []Route{Get(pattern, h), Post(pattern, h)}
}
