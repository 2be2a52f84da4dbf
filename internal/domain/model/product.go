package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock       int64           `gorm:"not null;default:0" json:"stock"`
	Category    string          `gorm:"type:varchar(100);not null;index" json:"category"`
	Image       string          `gorm:"type:text" json:"image"`

	// ボトル容量・度数・産地（任意）
	Volume  string `gorm:"type:varchar(50)" json:"volume"`
	Alcohol string `gorm:"type:varchar(50)" json:"alcohol"`
	Origin  string `gorm:"type:varchar(100)" json:"origin"`

	Tags    []string `gorm:"serializer:json;type:text" json:"tags"`
	Rating  float64  `gorm:"not null;default:0" json:"rating"`
	Reviews int64    `gorm:"not null;default:0;index" json:"reviews"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
