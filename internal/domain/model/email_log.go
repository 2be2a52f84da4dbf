package model

import "time"

type EmailStatus string

const (
	EmailStatusPending EmailStatus = "pending"
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusFailed  EmailStatus = "failed"
)

// 送信したメールの記録。失敗時はErrorに理由を残す。
type EmailLog struct {
	ID        int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	To        string      `gorm:"column:to_address;type:varchar(255);not null;index" json:"to"`
	Subject   string      `gorm:"type:varchar(255);not null" json:"subject"`
	Body      string      `gorm:"type:text;not null" json:"body"`
	Status    EmailStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Error     string      `gorm:"type:text" json:"error,omitempty"`
	CreatedAt time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
