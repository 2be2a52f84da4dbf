package notification

import (
	"context"
	"fmt"

	"storefront/internal/domain/model"
	"storefront/internal/infra/telemetry"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

// Mailer は実際の送信手段（SMTPなど）
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Dispatcher はメールを送り、結果をEmailLogに残す。
// 失敗はログに出すだけで呼び出し元には返さない。
type Dispatcher struct {
	logs   repo.EmailLogRepository
	mailer Mailer
	logger *zap.Logger
}

func NewDispatcher(logs repo.EmailLogRepository, mailer Mailer, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{logs: logs, mailer: mailer, logger: logger}
}

func (d *Dispatcher) Dispatch(ctx context.Context, to, subject, htmlBody string) {
	log := &model.EmailLog{
		To:      to,
		Subject: subject,
		Body:    htmlBody,
		Status:  model.EmailStatusPending,
	}
	if err := d.logs.Create(ctx, log); err != nil {
		// 記録できなくても送信は試す
		d.logger.Warn("failed to record email log", zap.String("to", to), zap.Error(err))
	}

	sendErr := d.send(ctx, to, subject, htmlBody)

	status := model.EmailStatusSent
	errMsg := ""
	if sendErr != nil {
		status = model.EmailStatusFailed
		errMsg = sendErr.Error()
		d.logger.Error("failed to send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(sendErr),
		)
	} else {
		d.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	}
	telemetry.EmailsTotal.WithLabelValues(string(status)).Inc()

	if log.ID == 0 {
		return
	}
	if err := d.logs.UpdateStatus(ctx, log.ID, status, errMsg); err != nil {
		d.logger.Warn("failed to update email log", zap.Int64("email_log_id", log.ID), zap.Error(err))
	}
}

// mailerのpanicも失敗として扱う
func (d *Dispatcher) send(ctx context.Context, to, subject, htmlBody string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mailer panic: %v", r)
		}
	}()
	return d.mailer.Send(ctx, to, subject, htmlBody)
}
