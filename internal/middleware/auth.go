package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// SessionCookieName is the HttpOnly cookie carrying the auth-session token.
const SessionCookieName = "session_token"

const sessionTTL = 7 * 24 * time.Hour

// SessionStore is the server-side record of live auth sessions, keyed by the
// token's jti claim. Deleting the record invalidates the token immediately
// even though its signature stays valid.
type SessionStore interface {
	Save(ctx context.Context, jti string, userID uuid.UUID, ttl time.Duration) error
	Lookup(ctx context.Context, jti string) (uuid.UUID, error)
	Revoke(ctx context.Context, jti string) error
}

type SessionAuth struct {
	Secret []byte
	Store  SessionStore
	Secure bool
}

func NewSessionAuth(secret string, store SessionStore, secure bool) *SessionAuth {
	return &SessionAuth{Secret: []byte(secret), Store: store, Secure: secure}
}

// Issue signs a session token for the user and records it server-side.
func (a *SessionAuth) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	jti := uuid.NewString()
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"jti":     jti,
		"exp":     time.Now().Add(sessionTTL).Unix(),
		"iat":     time.Now().Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
	if err != nil {
		return "", err
	}

	if err := a.Store.Save(ctx, jti, userID, sessionTTL); err != nil {
		return "", err
	}
	return token, nil
}

// Revoke invalidates the session behind a token. Unparseable or already
// revoked tokens are not an error; logout is idempotent.
func (a *SessionAuth) Revoke(ctx context.Context, tokenStr string) error {
	jti, _, err := a.verify(ctx, tokenStr)
	if err != nil {
		return nil
	}
	return a.Store.Revoke(ctx, jti)
}

// SetCookie attaches the session token to the response.
func (a *SessionAuth) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   a.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie on the client.
func (a *SessionAuth) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware gates a route group on a valid, unrevoked session cookie and
// attaches the user id to the request context.
func (a *SessionAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			writeUnauthorized(w, "Authentication required")
			return
		}

		_, userID, err := a.verify(r.Context(), cookie.Value)
		if err != nil {
			writeUnauthorized(w, "Invalid or expired session")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *SessionAuth) verify(ctx context.Context, tokenStr string) (string, uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.Secret, nil
	})
	if err != nil {
		return "", uuid.Nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	jti, ok := claims["jti"].(string)
	if !ok {
		return "", uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	// The signed user_id must match the one recorded at issue time
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return "", uuid.Nil, jwt.ErrTokenInvalidClaims
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return "", uuid.Nil, err
	}

	stored, err := a.Store.Lookup(ctx, jti)
	if err != nil || stored != userID {
		return "", uuid.Nil, jwt.ErrTokenUnverifiable
	}

	return jti, userID, nil
}

// GetUserID extracts user_id from request context
func GetUserID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(UserIDKey).(uuid.UUID)
	return id
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
