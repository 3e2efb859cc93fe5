package middleware

import (
	"github.com/danielgtaylor/huma/v2"
)

// Container collects the middlewares of the next route group. Public routes
// get request logging only; document routes add the token check after it.
type Container struct {
	huma.Middlewares
}

func NewContainer() *Container {
	return &Container{
		Middlewares: make(huma.Middlewares, 0),
	}
}

// Add appends middlewares in the order they run.
func (mc *Container) Add(middlewares ...func(ctx huma.Context, next func(huma.Context))) {
	mc.Middlewares = append(mc.Middlewares, middlewares...)
}

// GetAllAndClear hands the collected middlewares over and starts a new group.
func (mc *Container) GetAllAndClear() huma.Middlewares {
	result := mc.Middlewares
	mc.Middlewares = nil
	return result
}
