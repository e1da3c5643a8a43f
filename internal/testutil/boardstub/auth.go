package boardstub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ContextKey - тип ключей контекста, чтобы избежать коллизий.
type ContextKey string

// UserIDCtxKey holds the authenticated user id (int64) on the request context.
const UserIDCtxKey = ContextKey("user_id")

// Claims is the payload of the bearer tokens issued by the stub.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

type tokenIssuer struct {
	secret []byte
	ttl    time.Duration

	mu      sync.Mutex
	revoked map[string]struct{}
}

func newTokenIssuer(secret string, ttl time.Duration) *tokenIssuer {
	return &tokenIssuer{secret: []byte(secret), ttl: ttl, revoked: make(map[string]struct{})}
}

func (t *tokenIssuer) issue(userID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (t *tokenIssuer) parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, errors.New("token is not valid")
	}
	t.mu.Lock()
	_, revoked := t.revoked[claims.ID]
	t.mu.Unlock()
	if revoked {
		return nil, errors.New("token revoked")
	}
	return claims, nil
}

func (t *tokenIssuer) revoke(raw string) {
	claims, err := t.parse(raw)
	if err != nil {
		return
	}
	t.mu.Lock()
	t.revoked[claims.ID] = struct{}{}
	t.mu.Unlock()
}

func bearerToken(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// identify puts the user id of a valid bearer token on the context. Requests
// without one pass through anonymously; handlers decide whether that is allowed.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := s.tokens.parse(raw)
		if err != nil {
			s.logger.Debug("Ignoring invalid bearer token")
			next.ServeHTTP(w, r)
			return
		}
		if _, ok := s.store.user(claims.UserID); !ok {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), UserIDCtxKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAuth rejects anonymous requests with the marketplace's 401 body.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID(r) == 0 {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(UserIDCtxKey).(int64)
	return id
}
