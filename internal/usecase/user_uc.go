package usecase

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"cafe-passport/internal/domain"
	"cafe-passport/internal/domain/model"
	"cafe-passport/internal/domain/ports/repository"
)

var _ UserUseCase = (*userUC)(nil)

// UserUseCase covers the thin identity surface this service keeps: password
// login and the current-user snapshot. Signup, email verification and Google
// federation live outside this service.
type UserUseCase interface {
	Login(ctx context.Context, email, password string) (*model.User, error)
	// Current returns the user plus their plans; usability of each plan is a
	// read-time computation, not a stored field.
	Current(ctx context.Context, userID string) (*model.User, []*model.LocationPlan, error)
	ListByRole(ctx context.Context, role model.Role) ([]*model.User, error)
}

type userUC struct {
	users repository.UserRepository
	plans repository.LocationPlanRepository
}

func NewUserUseCase(users repository.UserRepository, plans repository.LocationPlanRepository) *userUC {
	return &userUC{users: users, plans: plans}
}

func (u *userUC) Login(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	user, err := u.users.FindByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (u *userUC) Current(ctx context.Context, userID string) (*model.User, []*model.LocationPlan, error) {
	user, err := u.users.FindByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrUserNotFound
		}
		return nil, nil, err
	}
	plans, err := u.plans.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, plans, nil
}

func (u *userUC) ListByRole(ctx context.Context, role model.Role) ([]*model.User, error) {
	return u.users.ListByRole(ctx, nil, role)
}
