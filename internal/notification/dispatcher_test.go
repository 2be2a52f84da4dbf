package notification_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/notification"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type memEmailLogs struct {
	mu        sync.Mutex
	logs      map[int64]model.EmailLog
	nextID    int64
	createErr error
}

func newMemEmailLogs() *memEmailLogs {
	return &memEmailLogs{logs: map[int64]model.EmailLog{}}
}

func (r *memEmailLogs) Create(ctx context.Context, log *model.EmailLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	log.ID = r.nextID
	r.logs[log.ID] = *log
	return nil
}

func (r *memEmailLogs) UpdateStatus(ctx context.Context, id int64, status model.EmailStatus, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.logs[id]
	l.Status = status
	l.Error = errMsg
	r.logs[id] = l
	return nil
}

func (r *memEmailLogs) only(t *testing.T) model.EmailLog {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.Len(t, r.logs, 1)
	for _, l := range r.logs {
		return l
	}
	return model.EmailLog{}
}

type stubMailer struct {
	err   error
	panic bool
	calls int
}

func (m *stubMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.calls++
	if m.panic {
		panic("smtp exploded")
	}
	return m.err
}

func TestDispatcher_Sent(t *testing.T) {
	logs := newMemEmailLogs()
	mailer := &stubMailer{}
	d := notification.NewDispatcher(logs, mailer, zaptest.NewLogger(t))

	subject, body := notification.Welcome("Alice")
	d.Dispatch(context.Background(), "alice@example.com", subject, body)

	l := logs.only(t)
	assert.Equal(t, "alice@example.com", l.To)
	assert.Equal(t, model.EmailStatusSent, l.Status)
	assert.Empty(t, l.Error)
	assert.Equal(t, 1, mailer.calls)
}

func TestDispatcher_Failed(t *testing.T) {
	logs := newMemEmailLogs()
	d := notification.NewDispatcher(logs, &stubMailer{err: errors.New("550 mailbox unavailable")}, zaptest.NewLogger(t))

	d.Dispatch(context.Background(), "bob@example.com", "hi", "<p>hi</p>")

	l := logs.only(t)
	assert.Equal(t, model.EmailStatusFailed, l.Status)
	assert.Contains(t, l.Error, "550")
}

// mailerがpanicしても呼び出し元には伝わらない
func TestDispatcher_MailerPanic(t *testing.T) {
	logs := newMemEmailLogs()
	d := notification.NewDispatcher(logs, &stubMailer{panic: true}, zaptest.NewLogger(t))

	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), "bob@example.com", "hi", "<p>hi</p>")
	})

	l := logs.only(t)
	assert.Equal(t, model.EmailStatusFailed, l.Status)
	assert.Contains(t, l.Error, "smtp exploded")
}

// ログが書けなくても送信はする
func TestDispatcher_LogFailureStillSends(t *testing.T) {
	logs := newMemEmailLogs()
	logs.createErr = errors.New("db down")
	mailer := &stubMailer{}
	d := notification.NewDispatcher(logs, mailer, zaptest.NewLogger(t))

	d.Dispatch(context.Background(), "bob@example.com", "hi", "<p>hi</p>")

	assert.Equal(t, 1, mailer.calls)
	assert.Empty(t, logs.logs)
}

func TestTemplates_EscapeHTML(t *testing.T) {
	_, body := notification.ContactSupport("<script>x</script>", "a@example.com", "", "hello")
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "General inquiry")

	subject, body := notification.OrderConfirmation(12, decimal.RequireFromString("30"), []model.OrderItem{
		{ProductName: "Merlot", Price: decimal.RequireFromString("15"), Quantity: 2},
	})
	assert.Equal(t, "Order Confirmation #12", subject)
	assert.Contains(t, body, "30.00")
	assert.Contains(t, body, "x2")
}
