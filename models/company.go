package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rahim5123rk-sys/trade-flow-app-sub000/config"
	"github.com/rahim5123rk-sys/trade-flow-app-sub000/utils"
)

// Company is the tenant. The per-type document number counters live here so
// allocation is a single-row compare-and-swap (see sequence.go).
type Company struct {
	ID                string    `gorm:"primary_key;size:36" json:"id"`
	Name              string    `gorm:"size:100;not null" json:"name"`
	NextInvoiceNumber int64     `gorm:"not null;default:1" json:"next_invoice_number"`
	NextQuoteNumber   int64     `gorm:"not null;default:1" json:"next_quote_number"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCompany struct {
	Name string `json:"name" validate:"required"`
}

func CreateCompany(ctx context.Context, input *NewCompany) (*Company, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	company := Company{
		ID:                uuid.New().String(),
		Name:              input.Name,
		NextInvoiceNumber: 1,
		NextQuoteNumber:   1,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func GetCompany(ctx context.Context, id string) (*Company, error) {
	db := config.GetDB()
	var company Company
	if err := db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &company, nil
}
