package usecase

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// プロフィール（名前・電話番号）
type UserUsecase struct {
	users repo.UserRepository
}

func NewUserUsecase(users repo.UserRepository) *UserUsecase {
	return &UserUsecase{users: users}
}

type UpdateProfileInput struct {
	Name  string
	Phone string
}

func (u *UserUsecase) GetProfile(ctx context.Context, p model.Principal) (UserDTO, error) {
	if !p.Authenticated() {
		return UserDTO{}, errUnauthenticated()
	}

	user, err := u.users.FindByID(ctx, p.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return UserDTO{}, NewError(KindNotFound, "user not found")
	}
	if err != nil {
		return UserDTO{}, internalError(err)
	}
	return toUserDTO(user), nil
}

func (u *UserUsecase) UpdateProfile(ctx context.Context, p model.Principal, in UpdateProfileInput) (UserDTO, error) {
	if !p.Authenticated() {
		return UserDTO{}, errUnauthenticated()
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return UserDTO{}, NewError(KindInvalidInput, "name is required")
	}

	err := u.users.UpdateProfile(ctx, p.UserID, name, strings.TrimSpace(in.Phone))
	if errors.Is(err, repo.ErrNotFound) {
		return UserDTO{}, NewError(KindNotFound, "user not found")
	}
	if err != nil {
		return UserDTO{}, internalError(err)
	}

	return u.GetProfile(ctx, p)
}
