package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/newsroomhq/rundown/internal/ctxutil"
	"github.com/newsroomhq/rundown/internal/database"
	"github.com/newsroomhq/rundown/internal/models"
)

type UserService struct {
	repo *database.Repository
}

func NewUserService(repo *database.Repository) *UserService {
	return &UserService{repo: repo}
}

type UserInput struct {
	DisplayName string      `json:"display_name"`
	Role        models.Role `json:"role"`
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	if in.DisplayName == "" {
		return nil, fmt.Errorf("%w: display name is required", ErrValidation)
	}
	switch in.Role {
	case models.RoleAdmin, models.RoleProducer, models.RoleEditor, models.RoleReporter:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}

	u := &models.User{
		UserID:      uuid.NewString(),
		DisplayName: in.DisplayName,
		Role:        in.Role,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	actor := ctxutil.ActorFromContext(ctx)
	if err := s.repo.InsertAudit(ctx, auditEntry(actor, "user.create", "user", u.UserID, in.DisplayName)); err != nil {
		return nil, err
	}
	return s.repo.GetUserByID(ctx, u.UserID)
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}
