package users

import (
	"context"

	"github.com/rdhub/rdhub/backend/go-services/internal/models"
)

// Service encapsulates curator-account business logic
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// UpsertFromClaims creates or updates a curator using OIDC claims. The role
// comes from the realm's "role" claim and defaults to viewer so that fresh
// accounts cannot edit anything until promoted.
func (s *Service) UpsertFromClaims(ctx context.Context, claims map[string]interface{}) (*models.User, error) {
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	if sub == "" {
		return nil, nil
	}
	switch role {
	case models.RoleAdmin, models.RoleCurator, models.RoleViewer:
	default:
		role = models.RoleViewer
	}
	u := &models.User{
		Sub:   sub,
		Email: email,
		Name:  name,
		Role:  role,
	}
	return s.repo.UpsertBySub(ctx, u)
}

func (s *Service) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	return s.repo.GetBySub(ctx, sub)
}
