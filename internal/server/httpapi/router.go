// Package httpapi exposes the service over HTTP: the Telegram webhook, the
// wallet-link callback used by the connector page, and operational
// endpoints.
package httpapi

import (
	"embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/logging"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/bot"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/gate"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/handshake"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/linktoken"
)

//go:embed web
var webFS embed.FS

type Params struct {
	Handshake *handshake.Service
	Gate      *gate.Gate
	Bot       *bot.Router
	Issuer    *linktoken.Issuer
	Messenger bot.Messenger
	Logger    logging.Logger
}

func NewRouter(p Params) *chi.Mux {
	h := &handler{
		handshake: p.Handshake,
		gate:      p.Gate,
		bot:       p.Bot,
		issuer:    p.Issuer,
		messenger: p.Messenger,
		logger:    p.Logger.With("module", "httpapi"),
	}

	r := chi.NewRouter()

	r.Use(observe)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(p.Logger))
	r.Use(chimw.Recoverer)

	// The connector page is opened inside wallet in-app browsers, which
	// land on arbitrary origins.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", h.health)

	r.Get("/wallet-link-app", serveLinkApp)
	r.Get("/api/handshake-key", h.handshakeKey)
	r.Post("/api/wallet-link-callback", h.walletLinkCallback)

	r.Post("/telegram/webhook", h.telegramWebhook)

	return r
}

func serveLinkApp(w http.ResponseWriter, _ *http.Request) {
	page, err := webFS.ReadFile("web/wallet-link-app.html")
	if err != nil {
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}
