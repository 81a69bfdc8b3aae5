package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foodorder/entity"
	"foodorder/pkg/apperr"
	"foodorder/repository"
	"foodorder/utils"

	"gorm.io/gorm"
)

type UserService struct {
	Repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{Repo: repo}
}

type CreateUserIn struct {
	AuthSubject string `json:"auth0Id"`
	Email       string `json:"email" binding:"required,email"`
}

type UpdateUserIn struct {
	Name         string `json:"name" binding:"required"`
	AddressLine1 string `json:"addressLine1" binding:"required"`
	City         string `json:"city" binding:"required"`
	Country      string `json:"country" binding:"required"`
}

// ResolveIdentity maps a verified token subject to the local user.
func (s *UserService) ResolveIdentity(ctx context.Context, subject string) (utils.Identity, error) {
	u, err := s.Repo.FindBySubject(ctx, subject)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.Identity{}, apperr.Unauthenticated("user not found")
	}
	if err != nil {
		return utils.Identity{}, err
	}
	return utils.Identity{Subject: subject, UserID: u.ID}, nil
}

// EnsureUser creates the local user for subject on first sign-in. created is
// false when the user already existed.
func (s *UserService) EnsureUser(ctx context.Context, subject string, in *CreateUserIn) (*entity.User, bool, error) {
	if in.AuthSubject != "" && in.AuthSubject != subject {
		return nil, false, apperr.Invalid("auth0Id does not match token subject")
	}

	existing, err := s.Repo.FindBySubject(ctx, subject)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	u := &entity.User{AuthSubject: subject, Email: strings.ToLower(strings.TrimSpace(in.Email))}
	if err := s.Repo.Create(ctx, u); err != nil {
		// lost a race with a parallel first request
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, ferr := s.Repo.FindBySubject(ctx, subject)
			if ferr != nil {
				return nil, false, ferr
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return u, true, nil
}

func (s *UserService) Get(ctx context.Context, ident utils.Identity) (*entity.User, error) {
	u, err := s.Repo.FindByID(ctx, ident.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	return u, err
}

func (s *UserService) UpdateProfile(ctx context.Context, ident utils.Identity, in *UpdateUserIn) (*entity.User, error) {
	if _, err := s.Get(ctx, ident); err != nil {
		return nil, err
	}
	err := s.Repo.Update(ctx, ident.UserID, map[string]any{
		"name":          strings.TrimSpace(in.Name),
		"address_line1": strings.TrimSpace(in.AddressLine1),
		"city":          strings.TrimSpace(in.City),
		"country":       strings.TrimSpace(in.Country),
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, ident)
}
