package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/inbucket/mimetpl/pkg/interpreter"
)

type contextKey struct{}

// Env holds the services shared by every request.
type Env struct {
	Interpreter *interpreter.Interpreter
	MaxBytes    int64
}

// Context is passed into every request handler function.
type Context struct {
	Vars        map[string]string
	Interpreter *interpreter.Interpreter
	MaxBytes    int64
}

// Close the Context (currently does nothing)
func (c *Context) Close() {
	// Do nothing
}

// WithEnv returns middleware that makes env available to NewContext.
func WithEnv(env *Env) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), contextKey{}, env)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

// NewContext returns a Context for the given HTTP Request.
func NewContext(req *http.Request) (*Context, error) {
	env, ok := req.Context().Value(contextKey{}).(*Env)
	if !ok || env == nil || env.Interpreter == nil {
		return nil, errors.New("no interpreter configured for request")
	}
	return &Context{
		Vars:        mux.Vars(req),
		Interpreter: env.Interpreter,
		MaxBytes:    env.MaxBytes,
	}, nil
}
