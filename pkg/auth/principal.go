package auth

import "context"

// Level is a cumulative permission level on one module.
type Level int

const (
	Ver         Level = 1
	Modificar   Level = 2
	Crear       Level = 3
	Administrar Level = 4
)

// Principal is the authenticated user behind a request.
type Principal struct {
	Subject     string
	Email       string
	Name        string
	AutoridadID int64
	Permisos    map[string]Level
}

// Can reports whether p holds at least level on module.
func (p *Principal) Can(module string, level Level) bool {
	if p == nil {
		return false
	}
	return p.Permisos[module] >= level
}

func (p *Principal) CanView(module string) bool   { return p.Can(module, Ver) }
func (p *Principal) CanModify(module string) bool { return p.Can(module, Modificar) }
func (p *Principal) CanCreate(module string) bool { return p.Can(module, Crear) }
func (p *Principal) CanAdmin(module string) bool  { return p.Can(module, Administrar) }

type contextKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal stored by the auth middleware, or nil.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(contextKey{}).(*Principal)
	return p
}
