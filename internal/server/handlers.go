// Package server handles HTTP requests, the websocket stream and middleware.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"mime"
	"net/http"
	"strings"

	"github.com/woozymasta/geoarea/internal/document"
	"github.com/woozymasta/geoarea/internal/geo"
	"github.com/woozymasta/geoarea/internal/metrics"
	"github.com/woozymasta/geoarea/internal/scene"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// pointRequest is the body of add and move requests.
type pointRequest struct {
	Lat       *float64 `json:"lat" validate:"required"`
	Lng       *float64 `json:"lng" validate:"required"`
	Draggable *bool    `json:"draggable,omitempty"`
}

func (p pointRequest) position() geo.LatLng {
	return geo.LatLng{Lat: *p.Lat, Lng: *p.Lng}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HandleIndex serves the main HTML application.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	etag := fmt.Sprintf(`"%08x"`, crc32.ChecksumIEEE(s.IndexHTML))

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// HandleFavicon serves the site logo.
func (s *ServerContext) HandleFavicon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(s.Favicon)
}

// HandleConfig serves the map view and polygon style for the page.
func (s *ServerContext) HandleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Config)
}

// HandleScene serves a snapshot of the scene.
func (s *ServerContext) HandleScene(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

// HandleAddPoint places a marker, draggable unless the body says otherwise.
func (s *ServerContext) HandleAddPoint(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodePoint(w, r)
	if !ok {
		return
	}

	draggable := true
	if req.Draggable != nil {
		draggable = *req.Draggable
	}

	var marker scene.Marker
	_ = s.Session.Do(func(sc *scene.Scene) error {
		id := sc.AddPoint(req.position(), draggable)
		marker, _ = sc.Marker(id)
		return nil
	})

	writeJSON(w, http.StatusCreated, marker)
}

// HandleMovePoint moves a draggable marker.
func (s *ServerContext) HandleMovePoint(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %q", scene.ErrUnknownPoint, r.PathValue("id")))
		return
	}

	req, ok := s.decodePoint(w, r)
	if !ok {
		return
	}

	var marker scene.Marker
	err = s.Session.Do(func(sc *scene.Scene) error {
		if err := sc.MovePoint(id, req.position()); err != nil {
			return err
		}
		marker, _ = sc.Marker(id)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, marker)
}

// HandleClear removes every marker and the boundary.
func (s *ServerContext) HandleClear(w http.ResponseWriter, r *http.Request) {
	_ = s.Session.Do(func(sc *scene.Scene) error {
		sc.Clear()
		return nil
	})

	w.WriteHeader(http.StatusNoContent)
}

// HandleExport downloads the scene as a document.
func (s *ServerContext) HandleExport(w http.ResponseWriter, r *http.Request) {
	format, err := document.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	data, err := s.Session.Export(format)
	metrics.ObserveDocument("export", string(format), err)
	if err != nil {
		s.writeError(w, err)
		return
	}

	filename := s.Config.ExportName + format.Extension()

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("X-Filename", filename)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

// HandleImport replaces the scene with an uploaded document.
// The format comes from the format query parameter or the content type.
func (s *ServerContext) HandleImport(w http.ResponseWriter, r *http.Request) {
	format, err := importFormat(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	data, err := document.ReadAll(r.Body, s.Config.MaxImportSize)
	if err == nil {
		err = s.Session.Import(data, format)
	}
	metrics.ObserveDocument("import", string(format), err)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.log.Info().
		Str("format", string(format)).
		Int("bytes", len(data)).
		Msg("Document imported")

	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

func importFormat(r *http.Request) (document.Format, error) {
	if name := r.URL.Query().Get("format"); name != "" {
		return document.ParseFormat(name)
	}

	mediatype, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case strings.Contains(mediatype, "yaml"):
		return document.FormatYAML, nil
	case strings.Contains(mediatype, "geo+json"):
		return document.FormatGeoJSON, nil
	}

	return document.FormatJSON, nil
}

func (s *ServerContext) decodePoint(w http.ResponseWriter, r *http.Request) (pointRequest, bool) {
	var req pointRequest

	data, err := document.ReadAll(r.Body, 4096)
	if err == nil {
		err = json.Unmarshal(data, &req)
	}
	if err == nil {
		err = validate.Struct(req)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
			Code:    "invalid_point",
			Message: err.Error(),
		}})
		return req, false
	}

	s.Session.warnOutOfRange(req.position())
	return req, true
}

// writeError maps domain errors to HTTP statuses.
func (s *ServerContext) writeError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "internal"

	switch {
	case errors.Is(err, document.ErrEmptyState):
		status, code = http.StatusConflict, "empty_state"
	case errors.Is(err, document.ErrMalformedDocument):
		status, code = http.StatusBadRequest, "malformed_document"
	case errors.Is(err, document.ErrUnsupportedFormat):
		status, code = http.StatusUnsupportedMediaType, "unsupported_format"
	case errors.Is(err, document.ErrTooLarge):
		status, code = http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, scene.ErrUnknownPoint):
		status, code = http.StatusNotFound, "unknown_point"
	case errors.Is(err, scene.ErrNotDraggable):
		status, code = http.StatusConflict, "not_draggable"
	}

	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("Request failed")
	} else {
		s.log.Debug().Err(err).Int("status", status).Msg("Request rejected")
	}

	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: err.Error()}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}
