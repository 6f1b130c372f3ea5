package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/tacklor/server/internal/domain"
	"github.com/tacklor/server/internal/i18n"
	"github.com/tacklor/server/internal/middleware"

	"github.com/google/uuid"
)

// maxRequestBody caps JSON request bodies. Photo uploads have their own limit.
const maxRequestBody = 1 << 20 // 1 MB

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// decodeJSON decodes a JSON request body into dst, rejecting unknown fields
// and oversized bodies.
func decodeJSON(r *http.Request, dst any) error {
	const op = "handler.decodeJSON"

	body := http.MaxBytesReader(nil, r.Body, maxRequestBody)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.Errorf(domain.ETOOLARGE, op, "Request body too large")
		}
		return domain.Errorf(domain.EINVALID, op, "Invalid JSON body: %v", err)
	}
	if dec.More() {
		return domain.Invalid(op, "Request body must contain a single JSON object")
	}
	if err := r.Body.Close(); err != nil && err != io.EOF {
		return domain.Internal(err, op, "Failed to read request body")
	}
	return nil
}

// requestUserID extracts the authenticated user ID placed on the context by
// the identity middleware.
func requestUserID(r *http.Request) (uuid.UUID, bool) {
	return middleware.GetUserID(r.Context())
}

// requestLanguage resolves the response language for a request. An explicit
// lang query parameter wins over the Accept-Language header; French is the
// default.
func requestLanguage(r *http.Request) i18n.Language {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return i18n.Parse(lang)
	}
	return i18n.Parse(r.Header.Get("Accept-Language"))
}

// pathUUID parses a UUID path parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	const op = "handler.pathUUID"

	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, domain.Errorf(domain.EINVALID, op, "Invalid %s", name)
	}
	return id, nil
}
