// internal/api/handler.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/models"
	"assessment-workers/internal/pipeline"
)

const (
	AssessmentsPath = "/assessments"

	maxBodyBytes = 1 << 20
)

// Processor runs a submission through the assessment pipeline.
type Processor interface {
	Process(ctx context.Context, payload map[string]interface{}) (*models.ProcessingResult, error)
}

type ErrorResponse struct {
	Error          string  `json:"error"`
	Details        string  `json:"details,omitempty"`
	ValidationPath *string `json:"validation_path,omitempty"`
	Timestamp      string  `json:"timestamp,omitempty"`
}

// validationErrorResponse always carries validation_path, null at the root.
type validationErrorResponse struct {
	Error          string  `json:"error"`
	Details        string  `json:"details"`
	ValidationPath *string `json:"validation_path"`
}

type Handler struct {
	processor     Processor
	allowedOrigin string
	logger        logger.Logger
	now           func() time.Time
}

func NewHandler(processor Processor, allowedOrigin string, log logger.Logger) *Handler {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return &Handler{
		processor:     processor,
		allowedOrigin: allowedOrigin,
		logger:        log.WithFields(map[string]interface{}{"component": "api"}),
		now:           time.Now,
	}
}

// Register mounts the submission endpoint on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle(AssessmentsPath, h)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.setHeaders(w)

	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("unexpected panic while processing assessment", map[string]interface{}{
				"panic": fmt.Sprint(rec),
			})
			h.internalError(w, fmt.Errorf("%v", rec))
		}
	}()

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodPost:
		h.submit(w, r)
	default:
		w.Header().Set("Allow", "POST, OPTIONS")
		h.writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
	}
}

func (h *Handler) setHeaders(w http.ResponseWriter) {
	header := w.Header()
	header.Set("Content-Type", "application/json")
	header.Set("Access-Control-Allow-Origin", h.allowedOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type")
	header.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			h.writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "Request body too large"})
			return
		}
		h.internalError(w, err)
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Request body is required"})
		return
	}

	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON in request body"})
		return
	}
	if isEmpty(decoded) {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Request body cannot be empty"})
		return
	}

	payload, ok := decoded.(map[string]interface{})
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
			Error:   "Invalid assessment data",
			Details: fmt.Sprintf("Invalid type. Expected: object, given: %s", jsonType(decoded)),
		})
		return
	}

	result, err := h.processor.Process(r.Context(), payload)
	if err != nil {
		var vf *pipeline.ValidationFailure
		if stderrors.As(err, &vf) {
			resp := validationErrorResponse{Error: "Invalid assessment data", Details: vf.Details}
			if vf.ValidationPath != "" {
				path := vf.ValidationPath
				resp.ValidationPath = &path
			}
			h.writeJSON(w, http.StatusBadRequest, resp)
			return
		}
		h.logger.Error("assessment processing failed", map[string]interface{}{"error": err.Error()})
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, pipeline.Response(result))
}

func (h *Handler) internalError(w http.ResponseWriter, err error) {
	h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:     "Internal server error",
		Details:   err.Error(),
		Timestamp: models.Timestamp(h.now()),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		h.logger.Error("failed to encode response", map[string]interface{}{"error": err.Error()})
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// isEmpty reports whether a decoded JSON value is null, zero or an empty container.
func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case map[string]interface{}:
		return len(t) == 0
	case []interface{}:
		return len(t) == 0
	case string:
		return t == ""
	case float64:
		return t == 0
	case bool:
		return !t
	}
	return false
}

func jsonType(v interface{}) string {
	switch v.(type) {
	case []interface{}:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	}
	return "null"
}
