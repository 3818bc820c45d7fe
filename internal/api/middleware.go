package api

import (
	"errors"
	"f2fit/gym-manager/internal/domain"
	"f2fit/gym-manager/internal/service"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Constants for context keys
const (
	ContextUserIDKey   = "userID"
	ContextUserRoleKey = "userRole"
	ContextGymIDKey    = "gymID"
	ContextSessionKey  = "session"
)

// jwtClaims defines the structure we expect in the JWT payload.
// Mirroring the structure used in authService.generateJWT
type jwtClaims struct {
	UserID    string      `json:"uid"`
	Role      domain.Role `json:"role"`
	GymID     string      `json:"gid"`
	SessionID string      `json:"sid"`
	jwt.RegisteredClaims
}

// AuthMiddleware authenticates the bearer token and loads the session it names.
// A valid token whose session was logged out or expired is rejected.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	secret := []byte(authService.GetJWTSecret())
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "Token has expired")
			} else {
				abortWithError(c, http.StatusUnauthorized, fmt.Sprintf("Invalid token: %v", err))
			}
			return
		}
		if !token.Valid || claims.UserID == "" || claims.SessionID == "" || !claims.Role.Valid() {
			abortWithError(c, http.StatusUnauthorized, "Invalid token or missing claims")
			return
		}

		session, err := authService.CurrentSession(c.Request.Context(), claims.SessionID)
		if err != nil {
			if errors.Is(err, service.ErrSessionExpired) {
				abortWithError(c, http.StatusUnauthorized, err.Error())
			} else {
				abortWithError(c, http.StatusInternalServerError, "Failed to load session")
			}
			return
		}
		if session.UserID != claims.UserID || session.Role != claims.Role {
			abortWithError(c, http.StatusUnauthorized, "Token does not match session")
			return
		}

		c.Set(ContextUserIDKey, session.UserID)
		c.Set(ContextUserRoleKey, session.Role)
		c.Set(ContextGymIDKey, session.GymID)
		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// RoleMiddleware creates middleware to check if user has the required role(s).
// Must run AFTER AuthMiddleware. A denied user is pointed at their own home.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, err := getUserRoleFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, err.Error())
			return
		}

		for _, allowedRole := range allowedRoles {
			if userRole == allowedRole {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": fmt.Sprintf("Access denied: Role '%s' does not have permission", userRole),
			"home":  userRole.HomePath(),
		})
	}
}

func getUserRoleFromContext(c *gin.Context) (domain.Role, error) {
	roleRaw, exists := c.Get(ContextUserRoleKey)
	if !exists {
		return "", errors.New("user role not found in context")
	}
	role, ok := roleRaw.(domain.Role)
	if !ok {
		return "", errors.New("invalid user role type in context")
	}
	return role, nil
}

// getSessionFromContext returns the session loaded by AuthMiddleware.
func getSessionFromContext(c *gin.Context) (*domain.Session, error) {
	raw, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil, errors.New("session not found in context")
	}
	session, ok := raw.(*domain.Session)
	if !ok {
		return nil, errors.New("invalid session type in context")
	}
	return session, nil
}

// mustSession aborts with 401 when no session is present.
func mustSession(c *gin.Context) (*domain.Session, bool) {
	session, err := getSessionFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return nil, false
	}
	return session, true
}
