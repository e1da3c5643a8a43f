// Package boardstub is an in-memory stand-in for the marketplace API, used by
// gateway and end-to-end tests. Status codes and error bodies follow the real
// server.
package boardstub

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/board-client/internal/domain"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Options struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
	// SeedDemo adds the demo accounts and three adverts the real server starts with.
	SeedDemo   bool
	Logger     *logger.Logger
}

// Server serves the marketplace API from memory and counts calls per route.
type Server struct {
	URL string

	router chi.Router
	store  *store
	tokens *tokenIssuer
	logger *logger.Logger
	http   *httptest.Server

	mu    sync.Mutex
	calls map[string]int
	hook  func(r *http.Request)
}

func New(opts Options) *Server {
	if opts.JWTSecret == "" {
		opts.JWTSecret = "board-stub-secret"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.MinCost
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	s := &Server{
		store:  newStore(opts.BcryptCost),
		tokens: newTokenIssuer(opts.JWTSecret, opts.TokenTTL),
		logger: opts.Logger.Named("BoardStub"),
		calls:  make(map[string]int),
	}
	if opts.SeedDemo {
		s.seedDemo()
	}

	r := chi.NewRouter()
	r.Use(s.observe)
	r.Use(s.identify)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found")
	})

	r.Get("/api/session", s.handleSession)
	r.Post("/api/register", s.handleRegister)
	r.Post("/api/login", s.handleLogin)
	r.Post("/api/logout", s.handleLogout)
	r.Get("/api/ads", s.handleListAds)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/api/ads", s.handleCreateAd)
		r.Get("/api/ads/my-responses", s.handleMyResponses)
		r.Delete("/api/ads/{id}", s.handleDeleteAd)
		r.Post("/api/ads/{id}/respond", s.handleRespond)
		r.Get("/api/ads/{id}/responders", s.handleResponders)
	})

	s.router = r
	return s
}

// Start runs a server on a loopback port for the duration of the test.
func Start(tb testing.TB, opts Options) *Server {
	tb.Helper()
	s := New(opts)
	s.http = httptest.NewServer(s.router)
	s.URL = s.http.URL
	tb.Cleanup(s.http.Close)
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// SetHook installs fn to run before every request is handled. It may block.
func (s *Server) SetHook(fn func(r *http.Request)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = fn
}

// Calls reports how many requests matched route, e.g. "POST /api/ads/{id}/respond".
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// AddUser registers an account directly.
func (s *Server) AddUser(name, email, password string) domain.User {
	u, err := s.store.register(name, email, password)
	if err != nil {
		panic(err)
	}
	return u
}

// AddListing publishes an advert on behalf of ownerID and returns its id.
func (s *Server) AddListing(ownerID int64, title, description string, price float64) int64 {
	return s.store.createAdvert(ownerID, title, description, price).ID
}

// TokenFor issues a valid bearer token for userID.
func (s *Server) TokenFor(userID int64) string {
	tok, err := s.tokens.issue(userID)
	if err != nil {
		panic(err)
	}
	return tok
}

// Revoke invalidates a token as if its owner logged out elsewhere.
func (s *Server) Revoke(token string) {
	s.tokens.revoke(token)
}

func (s *Server) seedDemo() {
	demo := s.AddUser("Demo User", "demo@example.com", "demo123")
	alice := s.AddUser("Alice Smith", "alice@example.com", "alice123")
	s.AddListing(demo.ID, "Vintage Bicycle", "Reliable city bike. Recently serviced.", 150)
	s.AddListing(demo.ID, "Gaming Laptop", "15\" display, RTX graphics, 16GB RAM.", 950)
	s.AddListing(alice.ID, "iPhone 14 Pro", "Mint condition, 256GB, with original box and accessories.", 750)
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		hook := s.hook
		s.mu.Unlock()
		if hook != nil {
			hook(r)
		}

		next.ServeHTTP(w, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.mu.Lock()
		s.calls[r.Method+" "+route]++
		s.mu.Unlock()
		s.logger.Debug("Handled request", zap.String("method", r.Method), zap.String("route", route))
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	id := userID(r)
	if id == 0 {
		writeJSON(w, http.StatusOK, map[string]interface{}{"authenticated": false})
		return
	}
	u, _ := s.store.user(id)
	writeJSON(w, http.StatusOK, map[string]interface{}{"authenticated": true, "user": u})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	name, email, password := r.FormValue("name"), r.FormValue("email"), r.FormValue("password")
	if name == "" || email == "" || password == "" {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if _, err := s.store.register(name, email, password); err != nil {
		if errors.Is(err, errEmailTaken) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.logger.Error("Failed to register user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Registration complete"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	email, password := r.FormValue("email"), r.FormValue("password")
	if email == "" || password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	u, err := s.store.authenticate(email, password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	token, err := s.tokens.issue(u.ID)
	if err != nil {
		s.logger.Error("Failed to issue token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"token": token, "user": u})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if raw := bearerToken(r); raw != "" {
		s.tokens.revoke(raw)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleListAds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"ads": s.store.listings(userID(r))})
}

func (s *Server) handleCreateAd(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		writeError(w, http.StatusBadRequest, "Title and description are required")
		return
	}
	var price float64
	if raw := r.FormValue("price"); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid price")
			return
		}
		price = p
	}
	s.store.createAdvert(userID(r), title, description, price)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleMyResponses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"ads": s.store.respondedBy(userID(r))})
}

func (s *Server) handleDeleteAd(w http.ResponseWriter, r *http.Request) {
	id, ok := advertID(w, r)
	if !ok {
		return
	}
	if err := s.store.deleteAdvert(userID(r), id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	id, ok := advertID(w, r)
	if !ok {
		return
	}
	if err := s.store.respond(userID(r), id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleResponders(w http.ResponseWriter, r *http.Request) {
	id, ok := advertID(w, r)
	if !ok {
		return
	}
	responders, err := s.store.responders(userID(r), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"responders": responders})
}

func advertID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, errAdNotFound.Error())
		return 0, false
	}
	return id, true
}

func writeStoreError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errAdNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errNotOwnerDelete), errors.Is(err, errNotOwnerView):
		status = http.StatusForbidden
	case errors.Is(err, errOwnAdvert):
		status = http.StatusBadRequest
	case errors.Is(err, errAlreadyResponded):
		status = http.StatusConflict
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, message string) {
	if message == "" {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
