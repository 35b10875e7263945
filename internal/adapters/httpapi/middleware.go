package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
)

const participantKey = "participant"

// AuthClaims is the token issued by the identity provider. Subject carries
// the external account key.
type AuthClaims struct {
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// authenticate accepts either "Bearer <jwt>" for registered accounts or
// "Guest <token>" for guest bearer tokens.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, credential, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		credential = strings.TrimSpace(credential)
		if !ok || credential == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "unauthenticated", "message": "missing token"})
			return
		}

		switch scheme {
		case "Bearer":
			claims, err := s.parseJWT(credential)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "unauthenticated", "message": "invalid token"})
				return
			}
			profile, err := s.svc.Identity.ResolveRegistered(c.Request.Context(), claims.Subject, claims.Name, claims.Picture)
			if err != nil {
				s.abortWithError(c, err)
				return
			}
			c.Set(participantKey, profile.Ref())
		case "Guest":
			ref, err := s.svc.Identity.ResolveBearer(c.Request.Context(), credential)
			if err != nil {
				s.abortWithError(c, err)
				return
			}
			c.Set(participantKey, ref)
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "unauthenticated", "message": "unsupported authorization scheme"})
			return
		}
		c.Next()
	}
}

func (s *Server) parseJWT(raw string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &AuthClaims{}, func(*jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	claims := token.Claims.(*AuthClaims)
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// requireRegistered rejects guests on routes that need an account.
func (s *Server) requireRegistered() gin.HandlerFunc {
	return func(c *gin.Context) {
		if participant(c).IsGuest() {
			s.abortWithError(c, domain.ErrForbidden)
			return
		}
		c.Next()
	}
}

// requireMember restricts a hangout-scoped route to the hangout's members.
func (s *Server) requireMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := s.svc.Memberships.Membership(c.Request.Context(), c.Param("id"), participant(c)); err != nil {
			s.abortWithError(c, err)
			return
		}
		c.Next()
	}
}

func participant(c *gin.Context) entities.ParticipantRef {
	return c.MustGet(participantKey).(entities.ParticipantRef)
}
