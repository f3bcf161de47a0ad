package routes

import "net/http"

// Group organizes routes under a common prefix. Middleware wraps every route
// of the group and of its children, outermost first.
type Group struct {
	Prefix     string
	Middleware []func(http.Handler) http.Handler
	Routes     []Route
	Children   []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		register(mux, "", nil, group)
	}
}

func register(mux *http.ServeMux, parentPrefix string, inherited []func(http.Handler) http.Handler, group Group) {
	prefix := parentPrefix + group.Prefix
	stack := append(append([]func(http.Handler) http.Handler{}, inherited...), group.Middleware...)

	for _, route := range group.Routes {
		var h http.Handler = route.Handler
		for i := len(stack) - 1; i >= 0; i-- {
			h = stack[i](h)
		}
		mux.Handle(route.Method+" "+prefix+route.Pattern, h)
	}
	for _, child := range group.Children {
		register(mux, prefix, stack, child)
	}
}
