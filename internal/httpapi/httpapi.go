package httpapi

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sweetsavoury/battletally/internal/battle"
	"github.com/sweetsavoury/battletally/internal/domain"
	"github.com/sweetsavoury/battletally/internal/observability"
)

const (
	headerShopDomain = "X-Shopify-Shop-Domain"
	headerTopic      = "X-Shopify-Topic"
	headerHmac       = "X-Shopify-Hmac-Sha256"

	maxBodyBytes = 1 << 20
)

// EventRouter dispatches one authenticated webhook, satisfied by battle.Router.
type EventRouter interface {
	Route(ctx context.Context, topic, shopDomain string, body []byte) (battle.Outcome, error)
}

// TotalsReader serves the public aggregate, satisfied by ledger.Totals.
type TotalsReader interface {
	Current(ctx context.Context, shopDomain string) (domain.Totals, error)
}

type Server struct {
	router  EventRouter
	totals  TotalsReader
	secret  []byte
	mux     chi.Router
	logger  *zap.Logger
	metrics observability.Metrics
}

func New(router EventRouter, totals TotalsReader, webhookSecret string, logger *zap.Logger, metrics observability.Metrics) *Server {
	s := &Server{
		router:  router,
		totals:  totals,
		secret:  []byte(webhookSecret),
		mux:     chi.NewRouter(),
		logger:  logger,
		metrics: metrics,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.Use(middleware.RequestID)
	s.mux.Use(middleware.Recoverer)
	s.mux.Use(ServerTimingApp(s.metrics))

	s.mux.Post("/webhooks", s.handleWebhook)
	s.mux.Get("/battle/totals", s.handleTotals)
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	topic := r.Header.Get(headerTopic)
	shop := r.Header.Get(headerShopDomain)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "cannot read body", http.StatusBadRequest)
		return
	}

	if !s.verifySignature(body, r.Header.Get(headerHmac)) {
		// Definitive rejection: the sender must not retry an unsigned event.
		s.logger.Warn("webhook signature mismatch",
			zap.String("topic", topic),
			zap.String("shop", shop),
		)
		s.metrics.ObserveWebhook(topic, "unauthenticated", msSince(start))
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	if topic == "" || shop == "" {
		http.Error(w, "missing topic or shop domain header", http.StatusBadRequest)
		return
	}

	outcome, err := s.router.Route(r.Context(), topic, shop, body)
	s.metrics.ObserveWebhook(topic, string(outcome), msSince(start))

	switch outcome {
	case battle.OutcomeRejected:
		s.logger.Warn("webhook rejected",
			zap.String("topic", topic),
			zap.String("shop", shop),
			zap.Error(err),
		)
		http.Error(w, "bad payload", http.StatusBadRequest)
	case battle.OutcomeFailed:
		s.logger.Error("webhook processing failed",
			zap.String("topic", topic),
			zap.String("shop", shop),
			zap.Error(err),
		)
		// Non-success makes the platform redeliver later; handlers are
		// idempotent so the retry is safe.
		http.Error(w, "processing failed", http.StatusBadGateway)
	default:
		w.Header().Set("X-Outcome", string(outcome))
		w.WriteHeader(http.StatusOK)
	}
}

// verifySignature checks the base64 HMAC-SHA256 of the raw body in constant
// time.
func (s *Server) verifySignature(body []byte, header string) bool {
	if header == "" {
		return false
	}
	sent, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	return hmac.Equal(sent, mac.Sum(nil))
}

type totalsResponse struct {
	SweetRevenue   float64 `json:"sweetRevenue"`
	SavouryRevenue float64 `json:"savouryRevenue"`
	LastUpdated    string  `json:"lastUpdated"`
}

// handleTotals is the public scoreboard. It renders missing state as zeros
// and is explicitly uncacheable so embedded widgets always see fresh numbers.
func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")

	totals, err := s.totals.Current(r.Context(), shop)
	if err != nil {
		s.logger.Error("totals read failed",
			zap.String("shop", shop),
			zap.Error(err),
		)
		http.Error(w, "store unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, totalsResponse{
		SweetRevenue:   float64(totals.SweetCents) / 100,
		SavouryRevenue: float64(totals.SavouryCents) / 100,
		LastUpdated:    totals.LastUpdated.Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return srv.ListenAndServe()
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
