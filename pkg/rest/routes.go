package rest

import (
	"github.com/gorilla/mux"
	"github.com/inbucket/mimetpl/pkg/server/web"
)

// SetupRoutes populates the routes for the REST interface
func SetupRoutes(r *mux.Router) {
	// API v1
	r.Path("/v1/interpret").Handler(
		web.Handler(InterpretV1)).Name("InterpretV1").Methods("POST")
}
