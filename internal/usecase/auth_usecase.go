package usecase

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/notification"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, email, password, name string) error
	ValidateLogin(ctx context.Context, email, password string) error
}

type UserDTO struct {
	ID    int64      `json:"id"`
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Phone string     `json:"phone"`
	Role  model.Role `json:"role"`
}

type AuthOutput struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthUsecase struct {
	tx        repo.TransactionManager
	users     repo.UserRepository
	validator AuthValidator
	hasher    PasswordHasher
	tokens    TokenIssuer
	notifier  Notifier
	logger    *zap.Logger
}

func NewAuthUsecase(
	tx repo.TransactionManager,
	users repo.UserRepository,
	validator AuthValidator,
	hasher PasswordHasher,
	tokens TokenIssuer,
	notifier Notifier,
	logger *zap.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		tx:        tx,
		users:     users,
		validator: validator,
		hasher:    hasher,
		tokens:    tokens,
		notifier:  notifier,
		logger:    logger,
	}
}

// Register はユーザーと空のカートを同じトランザクションで作る。
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (AuthOutput, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	if err := u.validator.ValidateRegister(ctx, in.Email, in.Password, in.Name); err != nil {
		return AuthOutput{}, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return AuthOutput{}, internalError(err)
	}

	user := &model.User{
		Email:        in.Email,
		PasswordHash: pwHash,
		Name:         in.Name,
		Phone:        strings.TrimSpace(in.Phone),
		Role:         model.RoleCustomer,
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return NewError(KindConflict, "email already registered")
			}
			return internalError(err)
		}
		if _, err := r.Carts().Create(ctx, user.ID); err != nil {
			return internalError(err)
		}
		return nil
	})
	if err != nil {
		return AuthOutput{}, err
	}

	token, err := u.tokens.Issue(*user)
	if err != nil {
		return AuthOutput{}, internalError(err)
	}

	u.logger.Info("user registered", zap.Int64("user_id", user.ID))

	subject, body := notification.Welcome(user.Name)
	u.notifier.Dispatch(ctx, user.Email, subject, body)

	return AuthOutput{Token: token, User: toUserDTO(user)}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (AuthOutput, error) {
	in.Email = normalizeEmail(in.Email)

	if err := u.validator.ValidateLogin(ctx, in.Email, in.Password); err != nil {
		return AuthOutput{}, err
	}

	user, err := u.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repo.ErrNotFound) {
		return AuthOutput{}, NewError(KindUnauthenticated, "invalid credentials")
	}
	if err != nil {
		return AuthOutput{}, internalError(err)
	}

	if !u.hasher.Verify(in.Password, user.PasswordHash) {
		return AuthOutput{}, NewError(KindUnauthenticated, "invalid credentials")
	}

	token, err := u.tokens.Issue(*user)
	if err != nil {
		return AuthOutput{}, internalError(err)
	}

	return AuthOutput{Token: token, User: toUserDTO(user)}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, p model.Principal) (UserDTO, error) {
	if !p.Authenticated() {
		return UserDTO{}, errUnauthenticated()
	}

	user, err := u.users.FindByID(ctx, p.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return UserDTO{}, errUnauthenticated()
	}
	if err != nil {
		return UserDTO{}, internalError(err)
	}
	return toUserDTO(user), nil
}

// LogoutAll はtoken_versionを上げ、発行済みのトークンを全て無効にする。
func (u *AuthUsecase) LogoutAll(ctx context.Context, p model.Principal) error {
	if !p.Authenticated() {
		return errUnauthenticated()
	}

	err := u.users.IncrementTokenVersion(ctx, p.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return errUnauthenticated()
	}
	if err != nil {
		return internalError(err)
	}

	u.logger.Info("user logged out from all sessions", zap.Int64("user_id", p.UserID))
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Phone: u.Phone,
		Role:  u.Role,
	}
}
