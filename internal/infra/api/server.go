package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"discount-code-service/internal/usecase"
)

// DiscountEngine is the slice of the usecase the transport needs.
type DiscountEngine interface {
	GenerateCodes(ctx context.Context, count, length int) usecase.GenerateCodesResponse
	UseCode(ctx context.Context, code string) usecase.UseCodeResponse
}

// Server adapts the code-lifecycle engine to HTTP/JSON. It only
// (de)serializes and maps status codes; all business rules live in the
// usecase.
type Server struct {
	engine DiscountEngine
	log    *zerolog.Logger
}

func NewServer(engine DiscountEngine, logger *zerolog.Logger) *Server {
	return &Server{engine: engine, log: logger}
}

// Router builds the chi router with the middleware stack applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/codes", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
		r.Post("/use", s.handleUse)
	})

	return Chain(r, TraceID(), RequestLog(s.log), Recover(s.log), Timeout(30*time.Second))
}

type generateRequest struct {
	Count  uint `json:"count"`
	Length uint `json:"length"`
}

type generateResponse struct {
	Result       bool   `json:"result"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp := s.engine.GenerateCodes(r.Context(), int(req.Count), int(req.Length))
	writeJSON(w, http.StatusOK, generateResponse{
		Result:       resp.Result,
		ErrorMessage: resp.ErrorMessage,
	})
}

type useRequest struct {
	Code string `json:"code"`
}

type useResponse struct {
	ResultCode uint   `json:"result_code"`
	Message    string `json:"message"`
}

func (s *Server) handleUse(w http.ResponseWriter, r *http.Request) {
	var req useRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp := s.engine.UseCode(r.Context(), req.Code)
	writeJSON(w, http.StatusOK, useResponse{
		ResultCode: uint(resp.ResultCode),
		Message:    resp.Message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
