package usecase

import (
	"context"
	"strings"

	"storefront/internal/notification"

	"go.uber.org/zap"
)

type ContactValidator interface {
	ValidateContact(ctx context.Context, in ContactInput) error
}

type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// お問い合わせ。サポート宛と本人宛の控えを送る（どちらも失敗は無視）。
type ContactUsecase struct {
	validator    ContactValidator
	notifier     Notifier
	supportEmail string
	logger       *zap.Logger
}

func NewContactUsecase(validator ContactValidator, notifier Notifier, supportEmail string, logger *zap.Logger) *ContactUsecase {
	return &ContactUsecase{
		validator:    validator,
		notifier:     notifier,
		supportEmail: supportEmail,
		logger:       logger,
	}
}

func (u *ContactUsecase) Submit(ctx context.Context, in ContactInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)

	if err := u.validator.ValidateContact(ctx, in); err != nil {
		return err
	}
	if in.Subject == "" {
		in.Subject = "Contact form"
	}

	subject, body := notification.ContactSupport(in.Name, in.Email, in.Subject, in.Message)
	u.notifier.Dispatch(ctx, u.supportEmail, subject, body)

	subject, body = notification.ContactReceipt(in.Name)
	u.notifier.Dispatch(ctx, in.Email, subject, body)

	u.logger.Info("contact message received", zap.String("email", in.Email))
	return nil
}
