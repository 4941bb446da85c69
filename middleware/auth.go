package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Benjaminax/camous-taskboard-system/services"
	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const userContextKey contextKey = "user"

// Authenticator проверяет Bearer-токен и кладет claims в контекст запроса.
type Authenticator struct {
	secret      []byte
	authService services.AuthService
}

func NewAuthenticator(secret string, authService services.AuthService) *Authenticator {
	return &Authenticator{
		secret:      []byte(secret),
		authService: authService,
	}
}

// Authenticate извлекает токен из заголовка Authorization или, для
// WebSocket-клиентов, из query-параметра token.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractToken(r)
		if tokenString == "" {
			respondUnauthorized(w, "Missing token")
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			respondUnauthorized(w, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin пускает дальше только администраторов. Права проверяются
// по актуальной записи, а не по флагу из токена.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			respondUnauthorized(w, "Missing token")
			return
		}

		isAdmin, err := a.authService.IsAdmin(r.Context(), userID)
		if err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Failed to verify admin rights")
			return
		}
		if !isAdmin {
			respondForbidden(w, services.ErrAdminRequired.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ClaimsFromContext возвращает claims текущего пользователя.
func ClaimsFromContext(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	return claims, ok
}

// UserIDFromContext возвращает id пользователя из claims.
// JSON-числа приходят как float64.
func UserIDFromContext(ctx context.Context) (int, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return 0, false
	}
	id, ok := claims["id"].(float64)
	if !ok {
		return 0, false
	}
	return int(id), true
}

// ContextWithClaims нужен тестам обработчиков.
func ContextWithClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, userContextKey, claims)
}

func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func respondJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, message)
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	respondJSONError(w, http.StatusUnauthorized, message)
}

func respondForbidden(w http.ResponseWriter, message string) {
	respondJSONError(w, http.StatusForbidden, message)
}
