// Package admin provides the authenticated operations console: submission
// listing, audit trail inspection, and document retrieval.
package admin

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "willgen/pkg/domain-errors"
	"willgen/pkg/platform/httputil"
	"willgen/pkg/requestcontext"
)

// Claims are the JWT claims for admin sessions.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Authenticator issues and validates admin session tokens. A single admin
// account is configured at deploy time; the stored credential is a hex
// SHA-256 of the password.
type Authenticator struct {
	username     string
	passwordHash string
	signingKey   []byte
	ttl          time.Duration
	now          func() time.Time
}

type AuthOption func(*Authenticator)

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) AuthOption {
	return func(a *Authenticator) { a.now = now }
}

func NewAuthenticator(username, passwordHash, signingKey string, ttl time.Duration, opts ...AuthOption) *Authenticator {
	a := &Authenticator{
		username:     username,
		passwordHash: passwordHash,
		signingKey:   []byte(signingKey),
		ttl:          ttl,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Login checks credentials and returns a session token. Both comparisons
// are constant-time.
func (a *Authenticator) Login(username, password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	providedHash := hex.EncodeToString(sum[:])

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(providedHash), []byte(a.passwordHash)) == 1
	if !userOK || !passOK {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "willgen",
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(a.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session token")
	}
	return signed, nil
}

// Validate parses a session token and returns the admin username.
func (a *Authenticator) Validate(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return a.signingKey, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "session has expired")
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Username == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	return claims.Username, nil
}

// RequireAuth rejects requests without a valid Bearer session token and
// records the admin username in the request context.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
			return
		}

		username, err := a.Validate(token)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}

		ctx := requestcontext.WithAdminUser(r.Context(), username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
