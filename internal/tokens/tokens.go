package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rdhub/rdhub/backend/go-services/internal/config"
	"github.com/rdhub/rdhub/backend/go-services/internal/models"
)

// GenerateAccessToken creates a signed JWT access token for the curator.
// The role claim lets handlers authorize edit/publish operations without a
// user lookup.
func GenerateAccessToken(cfg *config.Config, u *models.User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   u.Sub,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}
