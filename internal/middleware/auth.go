package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"booking-service/internal/logger"
	"booking-service/internal/models"
	"booking-service/internal/utils"
)

const principalKey = "principal"

var errInvalidToken = errors.New("invalid token")

type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs a principal token. Tokens are normally issued by the auth
// service; this is used by tests and local tooling.
func IssueToken(secret string, principal models.Principal, ttl time.Duration) (string, error) {
	claims := Claims{
		Role: principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(principal.ID, 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parsePrincipal(secret, tokenStr string) (models.Principal, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Principal{}, err
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return models.Principal{}, errInvalidToken
	}
	if claims.Role != models.RoleCustomer && claims.Role != models.RoleSupplier {
		return models.Principal{}, fmt.Errorf("%w: unknown role %q", errInvalidToken, claims.Role)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return models.Principal{}, fmt.Errorf("%w: bad subject %q", errInvalidToken, claims.Subject)
	}
	return models.Principal{ID: id, Role: claims.Role}, nil
}

// Authenticate resolves the bearer token into a principal.
func Authenticate(secret string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse("Missing bearer token", nil))
			return
		}

		principal, err := parsePrincipal(secret, strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			log.LogSecurity("INVALID_TOKEN", fmt.Sprintf("Rejected token from %s: %v", c.ClientIP(), err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse("Invalid token", nil))
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := map[models.Role]struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if _, allowedRole := allowed[principal.Role]; !ok || !allowedRole {
			c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse("Forbidden", nil))
			return
		}
		c.Next()
	}
}

func PrincipalFrom(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	principal, ok := v.(models.Principal)
	return principal, ok
}
