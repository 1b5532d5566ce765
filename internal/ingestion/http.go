package ingestion

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SuccessMessage is returned once every file part has been stored.
const SuccessMessage = "✅ File uploaded successfully!"

// HTTPHandler exposes REST endpoints for the ingestion service.
type HTTPHandler struct {
	service      *Service
	logger       *zap.Logger
	maxSizeBytes int64
	router       chi.Router
}

// NewHTTPHandler constructs the HTTP handler and wires routes. A maxSizeBytes
// of zero disables the request size limit.
func NewHTTPHandler(service *Service, logger *zap.Logger, maxSizeBytes int64) *HTTPHandler {
	h := &HTTPHandler{
		service:      service,
		logger:       logger,
		maxSizeBytes: maxSizeBytes,
	}
	h.buildRouter()
	return h
}

func (h *HTTPHandler) buildRouter() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)
	r.Post("/api/v1/uploads", h.handleUpload)
	r.Post("/api/UploadHandler", h.handleUpload)

	h.router = r
}

// Router exposes the configured chi router.
func (h *HTTPHandler) Router() http.Handler {
	return h.router
}

type uploadResponse struct {
	Message     string         `json:"message"`
	IngestionID string         `json:"ingestion_id"`
	Files       []StoredObject `json:"files"`
	Skipped     int            `json:"skipped"`
}

type failedFile struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

type storageFailureResponse struct {
	Error       string         `json:"error"`
	IngestionID string         `json:"ingestion_id"`
	Stored      []StoredObject `json:"stored"`
	Failed      []failedFile   `json:"failed"`
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (h *HTTPHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if h.maxSizeBytes > 0 {
		if r.ContentLength > h.maxSizeBytes {
			writeError(w, http.StatusRequestEntityTooLarge, ReasonBodyTooLarge.Message())
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxSizeBytes)
	}

	out, err := h.service.Ingest(r.Context(), r.Header.Get("Content-Type"), r.Body)
	if err != nil {
		h.writeIngestError(w, r, out, err)
		return
	}

	files := out.Stored
	if files == nil {
		files = []StoredObject{}
	}
	writeJSON(w, http.StatusOK, uploadResponse{
		Message:     SuccessMessage,
		IngestionID: out.IngestionID,
		Files:       files,
		Skipped:     out.Skipped,
	})
}

func (h *HTTPHandler) writeIngestError(w http.ResponseWriter, r *http.Request, out *Outcome, err error) {
	var ierr *Error
	if !errors.As(err, &ierr) {
		h.logger.Error("upload failed", zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	switch {
	case ierr.Reason == ReasonBodyTooLarge:
		writeError(w, http.StatusRequestEntityTooLarge, ierr.Reason.Message())
	case ierr.Kind == KindBadRequest:
		writeError(w, http.StatusBadRequest, ierr.Reason.Message())
	default:
		h.logger.Error("storage failure",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("ingestion_id", out.IngestionID),
			zap.Error(err),
		)
		resp := storageFailureResponse{
			Error:       "storage failure",
			IngestionID: out.IngestionID,
			Stored:      out.Stored,
			Failed:      make([]failedFile, 0, len(out.Failed)+1),
		}
		if resp.Stored == nil {
			resp.Stored = []StoredObject{}
		}
		for _, f := range out.Failed {
			resp.Failed = append(resp.Failed, failedFile{Name: f.Name, Error: f.Err.Error()})
		}
		if len(out.Failed) == 0 && ierr.Object != "" {
			resp.Failed = append(resp.Failed, failedFile{Name: ierr.Object, Error: ierr.Err.Error()})
		}
		writeJSON(w, http.StatusBadGateway, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}
