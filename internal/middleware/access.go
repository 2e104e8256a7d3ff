package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"aidraw-backend/internal/models"
)

type contextKey string

const AccessKey contextKey = "access"

// AccessPasswordHeader carries the shared access secret.
const AccessPasswordHeader = "X-Access-Password"

// AccessResult is the outcome of the credential check.
type AccessResult struct {
	Valid bool
	// Exempt calls skip client-side quota bookkeeping.
	Exempt bool
}

// WithOverride marks the call exempt when the caller brings its own provider key.
func (a AccessResult) WithOverride(cfg *models.ProviderConfig) AccessResult {
	if cfg.HasKey() {
		a.Exempt = true
	}
	return a
}

// AccessGate validates the shared access secret. Either a plain secret or a
// bcrypt hash may be configured; with neither, every caller is valid and
// nobody is exempt.
type AccessGate struct {
	password []byte
	hash     []byte
}

func NewAccessGate(password, bcryptHash string) *AccessGate {
	g := &AccessGate{}
	if password != "" {
		g.password = []byte(password)
	}
	if bcryptHash != "" {
		g.hash = []byte(bcryptHash)
	}
	return g
}

// Required reports whether a secret is configured.
func (g *AccessGate) Required() bool {
	return g.password != nil || g.hash != nil
}

// Check evaluates the credential presented on r.
func (g *AccessGate) Check(r *http.Request) AccessResult {
	if !g.Required() {
		return AccessResult{Valid: true}
	}

	supplied := strings.TrimSpace(r.Header.Get(AccessPasswordHeader))
	if supplied == "" {
		return AccessResult{}
	}

	if g.password != nil && subtle.ConstantTimeCompare([]byte(supplied), g.password) == 1 {
		return AccessResult{Valid: true, Exempt: true}
	}
	if g.hash != nil && bcrypt.CompareHashAndPassword(g.hash, []byte(supplied)) == nil {
		return AccessResult{Valid: true, Exempt: true}
	}
	return AccessResult{}
}

// Middleware rejects requests with a missing or wrong secret and attaches the
// AccessResult to the context of the others.
func (g *AccessGate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result := g.Check(r)
		if !result.Valid {
			log.WithFields(log.Fields{
				"request_id": r.Header.Get(RequestIDHeader),
				"remote":     r.RemoteAddr,
			}).Warn("rejected request with invalid access password")
			writeError(w, http.StatusUnauthorized, "Invalid access password")
			return
		}

		ctx := context.WithValue(r.Context(), AccessKey, result)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAccess extracts the AccessResult from request context. Requests that
// did not pass through the gate are valid and not exempt.
func GetAccess(ctx context.Context) AccessResult {
	result, ok := ctx.Value(AccessKey).(AccessResult)
	if !ok {
		return AccessResult{Valid: true}
	}
	return result
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: message})
}
