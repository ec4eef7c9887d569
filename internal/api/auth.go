package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/freshfold/laundrokart/internal/domain/auth"
)

type apiKeyCtxKey struct{}

// requireRole authenticates the bearer token against the API key repository
// and gates access on the key's role. Admin keys pass every gate.
func (h *Handler) requireRole(next http.Handler, roles ...auth.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		info, ok := h.verifyKey(r.Context(), token)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		allowed := false
		for _, role := range roles {
			if info.Allows(role) {
				allowed = true
				break
			}
		}
		if !allowed {
			writeError(w, http.StatusForbidden, "insufficient role")
			return
		}

		ctx := context.WithValue(r.Context(), apiKeyCtxKey{}, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// verifyKey hashes the presented token with the HMAC pepper, looks it up, and
// confirms the stored hash in constant time.
func (h *Handler) verifyKey(ctx context.Context, token string) (*auth.APIKeyInfo, bool) {
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(token))
	hash := mac.Sum(nil)

	info, err := h.apikeys.FindByHash(ctx, hex.EncodeToString(hash))
	if err != nil {
		return nil, false
	}

	stored, err := hex.DecodeString(info.KeyHash)
	if err != nil {
		return nil, false
	}
	if subtle.ConstantTimeCompare(hash, stored) != 1 {
		return nil, false
	}
	return info, true
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
