// authenticationhandler/authenticationhandler.go
/* Package authenticationhandler injects the session bearer token into outgoing requests.
The token itself lives in a caller-owned TokenStore; this package only reads it per request
and writes it when a login or logout completes. */
package authenticationhandler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/deploymenttheory/go-api-user-client/headers"
	"github.com/deploymenttheory/go-api-user-client/headers/redact"
	"github.com/deploymenttheory/go-api-user-client/logger"
	"go.uber.org/zap"
)

// ErrNoTokenStore is returned when a token update is attempted without a store.
var ErrNoTokenStore = errors.New("no token store configured")

// AuthTokenHandler applies the bearer token held by a TokenStore to requests.
type AuthTokenHandler struct {
	Store             TokenStore    // Store holds the session token; may be nil for anonymous clients.
	Logger            logger.Logger // Logger provides structured logging.
	HideSensitiveData bool          // HideSensitiveData masks the token in debug logs.
}

// tokenPrefixLength is how much of the token is logged when sensitive data is shown.
const tokenPrefixLength = 6

// NewAuthTokenHandler creates a new instance of AuthTokenHandler.
func NewAuthTokenHandler(store TokenStore, log logger.Logger, hideSensitiveData bool) *AuthTokenHandler {
	return &AuthTokenHandler{
		Store:             store,
		Logger:            log,
		HideSensitiveData: hideSensitiveData,
	}
}

// ApplyBearerToken sets "Authorization: Bearer <token>" on req when the store holds a token
// and the request does not already carry an Authorization header.
func (h *AuthTokenHandler) ApplyBearerToken(req *http.Request) error {
	headerHandler := headers.NewHeaderHandler(req, h.Logger)
	if h.Store == nil || headerHandler.HasAuthorization() {
		return nil
	}

	token, err := h.Store.Token()
	if err != nil {
		h.Logger.Error("Failed to read session token", zap.Error(err))
		return fmt.Errorf("reading session token: %w", err)
	}
	if token == "" {
		return nil
	}

	headerHandler.SetAuthorization(token)
	h.Logger.Debug("Bearer token applied", zap.String("Token", h.tokenForLog(token)))
	return nil
}

// tokenForLog returns the token as it may appear in logs: fully redacted when sensitive
// data is hidden, otherwise a short prefix.
func (h *AuthTokenHandler) tokenForLog(token string) string {
	if h.HideSensitiveData {
		return redact.Redacted
	}
	if len(token) <= tokenPrefixLength {
		return token
	}
	return token[:tokenPrefixLength] + "..."
}

// StoreToken records a token returned by a successful login.
func (h *AuthTokenHandler) StoreToken(token string) error {
	if h.Store == nil {
		return ErrNoTokenStore
	}
	if err := h.Store.SetToken(token); err != nil {
		h.Logger.Error("Failed to store session token", zap.Error(err))
		return fmt.Errorf("storing session token: %w", err)
	}
	h.Logger.Info("Session token stored", zap.Int("TokenLength", len(token)))
	return nil
}

// ClearToken drops the session token after a logout.
func (h *AuthTokenHandler) ClearToken() error {
	if h.Store == nil {
		return ErrNoTokenStore
	}
	if err := h.Store.SetToken(""); err != nil {
		h.Logger.Error("Failed to clear session token", zap.Error(err))
		return fmt.Errorf("clearing session token: %w", err)
	}
	h.Logger.Info("Session token cleared")
	return nil
}
