package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/google/uuid"
)

/*
session id 來源: X-Session-ID header > sid cookie > 新建
新建時透過 cookie 回給 client
*/
func SessionMiddleware(cookieTTL time.Duration, secure bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get(constants.HeaderSessionID)
			if sessionID == "" {
				if c, err := r.Cookie(constants.SessionCookieName); err == nil {
					sessionID = c.Value
				}
			}
			if !validSessionID(sessionID) {
				sessionID = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     constants.SessionCookieName,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(cookieTTL.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(constants.HeaderSessionID, sessionID)
			ctx := context.WithValue(r.Context(), constants.SessionIDKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityMiddleware 上游 gateway 驗證後帶 X-User-ID, 沒有帶或格式錯誤視為未登入
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var userID int64
		if raw := r.Header.Get(constants.HeaderUserID); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
				userID = id
			}
		}
		ctx := context.WithValue(r.Context(), constants.UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetSession(r *http.Request) model.Session {
	ctx := r.Context()
	sess := model.Session{}
	if v, ok := ctx.Value(constants.SessionIDKey).(string); ok {
		sess.SessionID = v
	}
	if v, ok := ctx.Value(constants.UserIDKey).(int64); ok {
		sess.UserID = v
	}
	return sess
}

func validSessionID(id string) bool {
	if id == "" || len(id) > constants.MaxSessionIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
