// Package server exposes the extractor over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/castlemilk/eeff/internal/extraction"
)

// Extractor is the subset of extraction.Extractor used by the handlers.
type Extractor interface {
	ExtractBytes(ctx context.Context, filename string, data []byte) (*extraction.Table, error)
	ParseText(text string) extraction.Result
	Catalog() *extraction.Catalog
}

// Config holds server settings.
type Config struct {
	Host           string
	Port           string
	AllowedOrigins []string
	MaxUploadBytes int64
}

// Server serves the extraction API.
type Server struct {
	cfg       Config
	extractor Extractor
}

// New creates a server around extractor.
func New(cfg Config, extractor Extractor) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 << 20
	}
	return &Server{cfg: cfg, extractor: extractor}
}

// Handler returns the API routes wrapped with CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/extract", s.handleExtract)
	mux.HandleFunc("POST /v1/parse", s.handleParse)
	mux.HandleFunc("GET /v1/catalog", s.handleCatalog)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
		},
	})

	return c.Handler(withRequestID(mux))
}

// Start serves HTTP/1.1 and cleartext HTTP/2 until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort(s.cfg.Host, s.cfg.Port),
		Handler:           h2c.NewHandler(s.Handler(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		log.Printf("[server] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type requestIDKey struct{}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type extractResponse struct {
	RequestID string            `json:"request_id"`
	Filename  string            `json:"filename,omitempty"`
	Values    extraction.Result `json:"values"`
}

type errorResponse struct {
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Error     string `json:"error"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	filename, data, err := readUpload(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "TOO_LARGE", err)
			return
		}
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}

	table, err := s.extractor.ExtractBytes(ctx, filename, data)
	if err != nil {
		log.Printf("[server] %s: extract %s: %v", requestID(ctx), filename, err)
		writeError(w, r, statusForError(err), string(extraction.CodeOf(err)), err)
		return
	}

	writeJSON(w, http.StatusOK, extractResponse{
		RequestID: requestID(ctx),
		Filename:  filename,
		Values:    table.Result(0),
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, http.StatusRequestEntityTooLarge, "TOO_LARGE", err)
		return
	}
	writeJSON(w, http.StatusOK, extractResponse{
		RequestID: requestID(r.Context()),
		Values:    s.extractor.ParseText(string(body)),
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.extractor.Catalog().Categories())
}

// readUpload accepts either a multipart form with a "file" field or a raw
// body named by the "filename" query parameter.
func readUpload(r *http.Request) (string, []byte, error) {
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, fmt.Errorf("read form file: %w", err)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return "", nil, fmt.Errorf("read form file: %w", err)
		}
		return header.Filename, data, nil
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		return "", nil, errors.New("missing file: send multipart field \"file\" or ?filename= with a raw body")
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, fmt.Errorf("read body: %w", err)
	}
	return filename, data, nil
}

func statusForError(err error) int {
	switch extraction.CodeOf(err) {
	case extraction.ErrInvalidFileType:
		return http.StatusUnsupportedMediaType
	case extraction.ErrPDFReadFailure:
		return http.StatusUnprocessableEntity
	case extraction.ErrFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	writeJSON(w, status, errorResponse{
		RequestID: requestID(r.Context()),
		Code:      code,
		Error:     err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[server] encode response: %v", err)
	}
}
