package main

import (
	"net/http"

	"github.com/docuglot/docuglot/pkg/routes"
)

// routes assembles the full HTTP surface: the /api domain groups, the
// presigned blob endpoints, and the health check, wrapped in CORS.
func (app *Application) routes() http.Handler {
	mux := routes.Build("/api",
		app.documents.Routes(),
		app.batches.Routes(),
		app.ledger.Routes(),
	)

	mux.HandleFunc("GET /blobs/{key...}", app.handleBlobGet)
	mux.HandleFunc("PUT /blobs/{key...}", app.handleBlobPut)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return app.enableCORS(mux)
}
