package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"go-auth-portal/internal/client"
	"go-auth-portal/internal/config"
	"go-auth-portal/internal/edge"
	"go-auth-portal/internal/middleware"
	"go-auth-portal/internal/model"
	"go-auth-portal/internal/session"
)

// Web is the frontend edge server. It resolves the visitor's session on
// every request and forwards /api calls to the API so the session cookie
// stays first-party.
type Web struct {
	server *http.Server
}

type pageState struct {
	Authenticated bool              `json:"authenticated"`
	DisplayName   string            `json:"displayName"`
	User          *model.PublicUser `json:"user,omitempty"`
}

func NewWeb(cfg *config.WebConfig) (*Web, error) {
	handler, err := newWebHandler(cfg)
	if err != nil {
		return nil, err
	}

	return &Web{server: &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}}, nil
}

func (w *Web) Handler() http.Handler {
	return w.server.Handler
}

func (w *Web) Run() error {
	return serve(w.server, nil)
}

func newWebHandler(cfg *config.WebConfig) (http.Handler, error) {
	target, err := url.Parse(cfg.APIURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid API_URL %q", cfg.APIURL)
	}

	api, err := client.New(cfg.APIURL, client.WithTimeout(cfg.APITimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize API client: %w", err)
	}

	visitors := visitorSessions{apiURL: cfg.APIURL, timeout: cfg.APITimeout}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		slog.Error("api proxy failed", "error", err, "path", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(model.APIResponse{
			Success:    false,
			StatusCode: http.StatusBadGateway,
			Message:    "API unavailable",
			Error:      &model.APIError{Code: "BAD_GATEWAY", Message: "API unavailable"},
		})
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)

	r.Handle("/api/*", proxy)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(pages chi.Router) {
		pages.Use(edge.Middleware(api, cfg.SecureCookies()))
		pages.Get("/", func(w http.ResponseWriter, r *http.Request) {
			var initial *model.PublicUser
			if user, ok := edge.UserFromContext(r.Context()); ok {
				initial = &user
			}
			store, err := visitors.newStore(initial)
			if err != nil {
				slog.Error("failed to build visitor session", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			state := store.State()

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(model.APIResponse{
				Success: true,
				Data: pageState{
					Authenticated: state.IsAuthenticated(),
					DisplayName:   state.DisplayName(),
					User:          state.User,
				},
			})
		})
	})

	return r, nil
}

// visitorSessions builds one session store per page request. Each store gets
// its own client so no visitor's cookie lands in a jar another visitor uses.
type visitorSessions struct {
	apiURL  string
	timeout time.Duration
}

func (v visitorSessions) newStore(initial *model.PublicUser) (*session.Store, error) {
	api, err := client.New(v.apiURL, client.WithTimeout(v.timeout))
	if err != nil {
		return nil, err
	}

	store := session.NewStore(api)
	if initial != nil {
		store.SetInitialUser(initial)
	}
	return store, nil
}
