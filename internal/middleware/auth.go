package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	principalKey = "principal"
)

// Principal is the authenticated caller, taken from the bearer token claims.
type Principal struct {
	UserID string
	Email  string
	Role   string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

var (
	errNoSubject = errors.New("userId claim missing")
	errNoSecret  = errors.New("signing secret not configured")
)

func parseBearer(raw, secret string) (Principal, error) {
	if secret == "" {
		return Principal{}, errNoSecret
	}
	parts := strings.Split(strings.TrimSpace(raw), " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return Principal{}, errors.New("invalid token format")
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Principal{}, err
	}
	if !token.Valid {
		return Principal{}, errors.New("token invalid")
	}

	p := Principal{}
	p.UserID, _ = claims["userId"].(string)
	if p.UserID == "" {
		p.UserID, _ = claims["sub"].(string)
	}
	p.UserID = strings.TrimSpace(p.UserID)
	if p.UserID == "" {
		return Principal{}, errNoSubject
	}
	p.Email, _ = claims["email"].(string)
	p.Role, _ = claims["role"].(string)
	if p.Role == "" {
		p.Role = RoleUser
	}
	return p, nil
}

// AuthGuard validates the bearer token and, when allowedRoles is not empty,
// requires one of them. The principal is stored on the context.
func AuthGuard(secret string, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		if strings.TrimSpace(raw) == "" {
			log.Println("[AUTH] [ERROR] missing token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		principal, err := parseBearer(raw, secret)
		if err != nil {
			log.Println("[AUTH] [ERROR] token validation failed:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if len(allowedRoles) > 0 {
			match := false
			for _, r := range allowedRoles {
				if principal.Role == r {
					match = true
					break
				}
			}
			if !match {
				log.Printf("[AUTH] [WARN] user %s with role %q denied", principal.UserID, principal.Role)
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// UserAuth accepts any authenticated buyer or administrator.
func UserAuth(secret string) gin.HandlerFunc {
	return AuthGuard(secret)
}

func AdminAuth(secret string) gin.HandlerFunc {
	return AuthGuard(secret, RoleAdmin)
}

// CurrentPrincipal returns the principal set by AuthGuard.
func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}
