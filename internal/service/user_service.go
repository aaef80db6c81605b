package service

import (
	"context"
	"strings"

	"github.com/imnamix/be-payplex/internal/domain"
	"github.com/imnamix/be-payplex/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type UserService interface {
	GetMe(ctx context.Context, userID int64) (*domain.User, error)
	UpdateShippingAddress(ctx context.Context, userID int64, address string) error
}

type userService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
	tracer   trace.Tracer
}

func NewUserService(userRepo repository.UserRepository, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
		tracer:   otel.Tracer("user_service"),
	}
}

func (s *userService) GetMe(ctx context.Context, userID int64) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *userService) UpdateShippingAddress(ctx context.Context, userID int64, address string) error {
	ctx, span := s.tracer.Start(ctx, "UserService.UpdateShippingAddress")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
	)

	return s.userRepo.UpdateShippingAddress(ctx, userID, strings.TrimSpace(address))
}
