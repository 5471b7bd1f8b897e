package server

import (
	"context"

	"github.com/inbucket/mimetpl/pkg/config"
	"github.com/inbucket/mimetpl/pkg/interpreter"
	"github.com/inbucket/mimetpl/pkg/rest"
	"github.com/inbucket/mimetpl/pkg/server/web"
)

// Services holds the configured and started services.
type Services struct {
	Interpreter *interpreter.Interpreter
	WebServer   *web.Server
}

// Prod wires up the production mimetpl environment. The HTTP server runs until rootCtx is
// done, or closes shutdownChan if it fails.
func Prod(rootCtx context.Context, shutdownChan chan bool, conf *config.Root) (*Services, error) {
	in, err := interpreter.FromConfig(conf.Interpreter)
	if err != nil {
		return nil, err
	}

	// Configure routes and start HTTP server.
	env := &web.Env{Interpreter: in, MaxBytes: conf.Web.MaxBytes}
	webServer := web.NewServer(conf.Web, shutdownChan, env)
	rest.SetupRoutes(webServer.Router.PathPrefix("/api/").Subrouter())
	go webServer.Start(rootCtx, nil)

	return &Services{
		Interpreter: in,
		WebServer:   webServer,
	}, nil
}
