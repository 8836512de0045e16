package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// StageFunc either returns the context the next stage runs with, or fails the
// request.
type StageFunc func(ctx context.Context, r *http.Request) (context.Context, error)

// Stage is one named step of an access pipeline.
type Stage struct {
	Name string
	// ProvidesIdentity marks stages that put an Identity in the context.
	ProvidesIdentity bool
	// RequiresIdentity marks stages that read one.
	RequiresIdentity bool
	Run              StageFunc
}

// Chain builds one middleware running stages in order. It panics when a stage
// reads an Identity that no earlier stage provides.
func Chain(stages ...Stage) echo.MiddlewareFunc {
	identity := false
	for i, stage := range stages {
		if stage.Run == nil {
			panic(fmt.Sprintf("middleware: stage %d (%q) has no run function", i, stage.Name))
		}
		if stage.RequiresIdentity && !identity {
			panic(fmt.Sprintf("middleware: stage %q requires an identity but no earlier stage provides one", stage.Name))
		}
		identity = identity || stage.ProvidesIdentity
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			for _, stage := range stages {
				ctx, err := stage.Run(req.Context(), req)
				if err != nil {
					return err
				}
				req = req.WithContext(ctx)
			}
			c.SetRequest(req)
			return next(c)
		}
	}
}
