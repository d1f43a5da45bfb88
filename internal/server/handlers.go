package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/docpack/internal/db"
	"github.com/jonathan/docpack/internal/pipeline"
	"github.com/jonathan/docpack/internal/progress"
	"github.com/jonathan/docpack/internal/schemas"
	"github.com/jonathan/docpack/internal/types"
)

// PackageRequest is the request body for POST /packages and /packages/stream.
type PackageRequest struct {
	ClientID      string                   `json:"client_id,omitempty"`
	DocumentTypes []string                 `json:"document_types"`
	Context       *types.GenerationContext `json:"context"`
	Options       *types.GenerationOptions `json:"options,omitempty"`
}

// DocumentTypeInfo describes one entry of GET /document-types.
type DocumentTypeInfo struct {
	Type         types.DocumentType   `json:"type"`
	DisplayName  string               `json:"display_name"`
	Dependencies []types.DocumentType `json:"dependencies"`
}

// MaxListLimit caps the limit query parameter of GET /packages.
const MaxListLimit = 200

// decodePackageRequest checks the body against the request schema and
// converts it to a pipeline request with a fresh package id. Unknown
// document types are passed through so the run reports them.
func (s *Server) decodePackageRequest(w http.ResponseWriter, r *http.Request) (PackageRequest, pipeline.Request, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		return PackageRequest{}, pipeline.Request{}, &ErrValidation{Message: "failed to read request body: " + err.Error()}
	}
	if !json.Valid(body) {
		return PackageRequest{}, pipeline.Request{}, &ErrValidation{Message: "request body is not valid JSON"}
	}
	if err := schemas.ValidateBytes(schemas.PackageRequest, body); err != nil {
		return PackageRequest{}, pipeline.Request{}, err
	}

	var req PackageRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return PackageRequest{}, pipeline.Request{}, &ErrValidation{Message: "invalid request body: " + err.Error()}
	}

	docTypes := make([]types.DocumentType, len(req.DocumentTypes))
	for i, raw := range req.DocumentTypes {
		if t, err := types.ParseDocumentType(raw); err == nil {
			docTypes[i] = t
		} else {
			docTypes[i] = types.DocumentType(raw)
		}
	}

	return req, pipeline.Request{
		PackageID:     uuid.New(),
		DocumentTypes: docTypes,
		Context:       req.Context,
		Options:       req.Options,
	}, nil
}

// progressSink adds the Redis fan-out when a publisher is configured.
func (s *Server) progressSink(packageID uuid.UUID, sink progress.Sink) progress.Sink {
	if s.publisher == nil {
		return sink
	}
	return progress.Multi{sink, progress.NewRedisSink(s.publisher, s.redisChannel, packageID.String(), s.logger)}
}

// save persists result if a store is configured.
func (s *Server) save(r *http.Request, clientID string, result *types.PackageResult) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.SavePackage(r.Context(), clientID, result); err != nil {
		s.logger.Error("failed to save package", "package_id", result.Metadata.PackageID.String(), "error", err)
		return err
	}
	return nil
}

// resultStatus maps a package status to an HTTP status code.
func resultStatus(result *types.PackageResult) int {
	if result.Status == types.PackageStatusFailed {
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}

// handleCreatePackage generates a package and returns it once complete
func (s *Server) handleCreatePackage(w http.ResponseWriter, r *http.Request) {
	body, req, err := s.decodePackageRequest(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	result := s.generator.Generate(r.Context(), req, s.progressSink(req.PackageID, nil))
	if err := s.save(r, body.ClientID, result); err != nil {
		s.errorResponse(w, http.StatusInternalServerError,
			fmt.Sprintf("package %s generated but could not be saved", result.Metadata.PackageID))
		return
	}
	s.jsonResponse(w, resultStatus(result), result)
}

// handleCreatePackageStream generates a package and streams progress via SSE
func (s *Server) handleCreatePackageStream(w http.ResponseWriter, r *http.Request) {
	body, req, err := s.decodePackageRequest(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	sink := progress.SinkFunc(func(snap progress.Snapshot) {
		if err := sse.WriteEvent(EventProgress, snap); err != nil {
			s.logger.Debug("failed to write progress event", "error", err)
		}
	})

	// Generation runs on the request goroutine; progress is written as it happens.
	stop := sse.KeepAlive(r.Context(), s.keepAlive)
	result := s.generator.Generate(r.Context(), req, s.progressSink(req.PackageID, sink))
	stop()
	if err := s.save(r, body.ClientID, result); err != nil {
		sse.WriteError(fmt.Sprintf("package %s generated but could not be saved", result.Metadata.PackageID))
	}
	if err := sse.WriteEvent(EventResult, result); err != nil {
		s.logger.Warn("failed to write result event", "error", err)
	}
}

// handleListPackages lists stored packages, newest first
func (s *Server) handleListPackages(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, HTTPStatus(ErrStoreUnavailable), ErrStoreUnavailable.Error())
		return
	}

	limit := db.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxListLimit)
	}

	packages, err := s.store.ListPackages(r.Context(), r.URL.Query().Get("client_id"), limit)
	if err != nil {
		s.logger.Error("failed to list packages", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to list packages")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"packages": packages,
		"count":    len(packages),
	})
}

// handleGetPackage returns a stored package with its documents
func (s *Server) handleGetPackage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.packageID(w, r)
	if !ok {
		return
	}
	result, err := s.store.GetPackage(r.Context(), id)
	if err != nil {
		s.storeError(w, err, "failed to get package")
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleListDocuments returns the documents of a stored package
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	id, ok := s.packageID(w, r)
	if !ok {
		return
	}
	docs, err := s.store.ListDocuments(r.Context(), id)
	if err != nil {
		s.storeError(w, err, "failed to list documents")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"package_id": id,
		"documents":  docs,
		"count":      len(docs),
	})
}

// handleDeletePackage removes a stored package
func (s *Server) handleDeletePackage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.packageID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeletePackage(r.Context(), id); err != nil {
		s.storeError(w, err, "failed to delete package")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDocumentTypes lists every document type with its dependencies
func (s *Server) handleDocumentTypes(w http.ResponseWriter, _ *http.Request) {
	table := s.generator.Table()
	all := types.AllDocumentTypes()
	out := make([]DocumentTypeInfo, 0, len(all))
	for _, t := range all {
		deps := table.DependenciesOf(t)
		if deps == nil {
			deps = []types.DocumentType{}
		}
		out = append(out, DocumentTypeInfo{Type: t, DisplayName: t.DisplayName(), Dependencies: deps})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"document_types": out})
}

// packageID parses the {id} path value. It writes the error response and
// returns false when the store is missing or the id is malformed.
func (s *Server) packageID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if s.store == nil {
		s.errorResponse(w, HTTPStatus(ErrStoreUnavailable), ErrStoreUnavailable.Error())
		return uuid.Nil, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid package ID format")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) storeError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, db.ErrPackageNotFound) {
		s.errorResponse(w, http.StatusNotFound, "Package not found")
		return
	}
	s.logger.Error(message, "error", err)
	s.errorResponse(w, HTTPStatus(err), message)
}
