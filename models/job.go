package models

import (
	"context"
	"time"

	"github.com/rahim5123rk-sys/trade-flow-app-sub000/config"
	"github.com/rahim5123rk-sys/trade-flow-app-sub000/utils"
)

// Job is a site visit. It carries its own frozen customer snapshot and site
// address so the job sheet keeps rendering after the customer record changes
// or is deleted. Invoices raised from a job inherit the site address.
type Job struct {
	ID               int              `gorm:"primary_key" json:"id"`
	CompanyId        string           `gorm:"index;not null" json:"company_id"`
	CustomerId       int              `gorm:"index;not null" json:"customer_id"`
	Title            string           `gorm:"size:255;not null" json:"title"`
	Description      string           `gorm:"type:text" json:"description"`
	CustomerSnapshot CustomerSnapshot `gorm:"embedded;embeddedPrefix:customer_" json:"customer_snapshot"`
	SiteAddress      SiteAddress      `gorm:"embedded;embeddedPrefix:site_" json:"site_address"`
	ScheduledDate    *time.Time       `json:"scheduled_date"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewJob struct {
	CustomerId    int         `json:"customer_id" validate:"required"`
	Title         string      `json:"title" validate:"required"`
	Description   string      `json:"description"`
	SiteAddress   SiteAddress `json:"site_address"`
	ScheduledDate *time.Time  `json:"scheduled_date"`
}

func CreateJob(ctx context.Context, input *NewJob) (*Job, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, &utils.TenantIsolationError{Op: "CreateJob"}
	}

	if err := validateInput(input); err != nil {
		return nil, err
	}

	customer, err := utils.FetchModel[Customer](ctx, companyId, input.CustomerId)
	if err != nil {
		return nil, err
	}

	job := Job{
		CompanyId:        companyId,
		CustomerId:       customer.ID,
		Title:            input.Title,
		Description:      input.Description,
		CustomerSnapshot: NewCustomerSnapshot(customer),
		SiteAddress:      input.SiteAddress,
		ScheduledDate:    input.ScheduledDate,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func GetJob(ctx context.Context, id int) (*Job, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, &utils.TenantIsolationError{Op: "GetJob"}
	}

	return utils.FetchModel[Job](ctx, companyId, id)
}

func GetJobs(ctx context.Context, customerId *int) ([]*Job, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, &utils.TenantIsolationError{Op: "GetJobs"}
	}

	db := config.GetDB()
	var results []*Job
	dbCtx := db.WithContext(ctx).Where("company_id = ?", companyId)
	if customerId != nil && *customerId > 0 {
		dbCtx = dbCtx.Where("customer_id = ?", *customerId)
	}
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
