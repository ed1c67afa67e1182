package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tradebridge/internal/app"
	"tradebridge/internal/ports"
)

// RouterDeps bundles everything the HTTP layer needs.
type RouterDeps struct {
	Service    *app.Service
	Exchange   ports.ExchangeClient
	Logger     ports.Logger
	QuoteAsset string
	Testnet    bool
}

// NewRouter builds the HTTP routing table: the webhook endpoint plus the
// operational endpoints used for deployment checks.
func NewRouter(d RouterDeps) http.Handler {
	h := &Handler{
		service:    d.Service,
		exchange:   d.Exchange,
		logger:     d.Logger,
		quoteAsset: d.QuoteAsset,
		testnet:    d.Testnet,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(d.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/", h.Status)
	r.Get("/ping", h.Ping)
	r.Get("/balance", h.Balance)
	r.Get("/test-connection", h.TestConnection)
	r.Post("/webhook", h.Webhook)

	return r
}

// requestLogger logs one line per request through the application logger.
func requestLogger(logger ports.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info(r.Context(), "HTTP request", map[string]interface{}{
				"method":    r.Method,
				"path":      r.URL.Path,
				"status":    ww.Status(),
				"requestID": middleware.GetReqID(r.Context()),
			})
		})
	}
}
