// Package httpapi exposes the token-lifecycle operations over HTTP. It is a
// thin boundary: request decoding, error-to-status translation, and
// per-request configuration overrides all live here, while the semantics stay
// in the token package.
package httpapi

import (
	"context"
	"crypto/subtle"
	"log"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"gameitem-nft/internal/config"
	"gameitem-nft/internal/domain"
	"gameitem-nft/internal/observability"
	"gameitem-nft/internal/storage"
)

// TokenService is the lifecycle surface the handlers call into.
type TokenService interface {
	Mint(ctx context.Context, req *domain.MintRequest, ov *config.Override) (*domain.MintResult, error)
	GetToken(ctx context.Context, tokenID *big.Int, ov *config.Override) (*domain.TokenView, error)
	ListOwned(ctx context.Context, address string, ov *config.Override) ([]*domain.TokenView, error)
	VerifyOwnership(ctx context.Context, tokenID *big.Int, address string, ov *config.Override) (*domain.VerifyResult, error)
}

// Options configures the Server.
type Options struct {
	Service TokenService

	// ConfigStore backs the configuration endpoints. Optional; without it
	// the endpoints report the store as unconfigured.
	ConfigStore storage.ConfigStore

	// UploadDir receives files posted to the upload endpoint. Optional;
	// without it uploads are rejected.
	UploadDir string

	// AuthToken, when set, requires a matching bearer token on /api routes.
	AuthToken string

	Logger  *log.Logger
	Metrics *observability.Metrics
}

// Server hosts the HTTP surface.
type Server struct {
	service     TokenService
	configStore storage.ConfigStore
	uploadDir   string
	authToken   string
	logger      *log.Logger
	metrics     *observability.Metrics
}

// NewServer creates the HTTP surface.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		service:     opts.Service,
		configStore: opts.ConfigStore,
		uploadDir:   opts.UploadDir,
		authToken:   opts.AuthToken,
		logger:      logger,
		metrics:     opts.Metrics,
	}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)

	if s.uploadDir != "" {
		uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadDir)))
		r.Get("/uploads/*", uploads.ServeHTTP)
	}

	r.Route("/api", func(api chi.Router) {
		if s.authToken != "" {
			api.Use(s.requireBearer)
		}

		api.Post("/mint", s.handleMint)
		api.Post("/upload", s.handleUpload)

		api.Get("/tokens/{tokenID}", s.handleGetToken)
		api.Get("/tokens/{tokenID}/owned-by/{address}", s.handleVerifyOwnership)
		api.Get("/owners/{address}/tokens", s.handleListOwned)

		api.Get("/config", s.handleGetConfig)
		api.Put("/config", s.handlePutConfig)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireBearer rejects /api requests without the configured bearer token.
func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing or invalid bearer token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// observe counts requests per route and status.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if s.metrics != nil {
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
		}
		s.logger.Printf("%s %s -> %d (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}
