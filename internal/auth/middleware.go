package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"simclinic/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// StudentIDKey is the gin context key holding the authenticated student id.
const StudentIDKey = "studentID"

// Bearer validates the Authorization bearer token and stores the student id
// claim on the context. Tokens are HMAC-signed with SIMCLINIC_AUTH_SECRET.
func Bearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")
		claims, err := parseToken(config.AuthSecret(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(StudentIDKey, claims.Subject)
		c.Next()
	}
}

func parseToken(secret, raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}

// SignStudentToken issues a bearer token for the given student id.
// Used by the session collaborator and by tests.
func SignStudentToken(secret, studentID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: studentID})
	return token.SignedString([]byte(secret))
}

// ServiceKey checks the request for a valid service key (header or query).
// Use for internal routes only. Expects X-Service-Key header or service_key
// query param to match SIMCLINIC_SERVICE_KEY in .env.
func ServiceKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		expect := config.ServiceKey()
		if expect == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server not configured"})
			return
		}
		got := c.GetHeader("X-Service-Key")
		if got == "" {
			got = c.Query("service_key")
		}
		if !constantTimeEqual(got, expect) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid service key"})
			return
		}
		c.Next()
	}
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
