package main

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/docuglot/docuglot/internal/storage"
	"github.com/docuglot/docuglot/pkg/handlers"
)

// handleBlobGet serves a stored blob after verifying the presigned GET
// signature issued for its key.
func (app *Application) handleBlobGet(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	if err := app.verifyBlobRequest(r, "GET", key); err != nil {
		handlers.RespondError(w, app.logger, blobStatus(err), err)
		return
	}

	data, err := app.storage.Retrieve(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, app.logger, blobStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleBlobPut accepts a direct upload against a presigned PUT form,
// enforcing the size cap the form was issued with.
func (app *Application) handleBlobPut(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	if err := app.verifyBlobRequest(r, "PUT", key); err != nil {
		handlers.RespondError(w, app.logger, blobStatus(err), err)
		return
	}

	maxSize := app.config.Storage.MaxUploadSizeBytes()
	if v := r.URL.Query().Get("max_size"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 && n < maxSize {
			maxSize = n
		}
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSize))
	if err != nil {
		handlers.RespondError(w, app.logger, http.StatusRequestEntityTooLarge, err)
		return
	}

	if err := app.storage.Store(r.Context(), key, data); err != nil {
		handlers.RespondError(w, app.logger, blobStatus(err), err)
		return
	}

	app.logger.Info("blob uploaded", "key", key, "bytes", len(data))
	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) verifyBlobRequest(r *http.Request, method, key string) error {
	expires, err := strconv.ParseInt(r.URL.Query().Get("expires"), 10, 64)
	if err != nil {
		return storage.ErrSignatureInvalid
	}
	return app.storage.VerifySignature(method, key, expires, r.URL.Query().Get("signature"))
}

func blobStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrSignatureExpired),
		errors.Is(err, storage.ErrSignatureInvalid):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
