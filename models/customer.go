package models

import (
	"context"
	"time"

	"github.com/rahim5123rk-sys/trade-flow-app-sub000/config"
	"github.com/rahim5123rk-sys/trade-flow-app-sub000/utils"
)

// Customer is the live record. Documents and jobs never reference these
// fields at render time; they carry their own frozen CustomerSnapshot.
type Customer struct {
	ID           int       `gorm:"primary_key" json:"id"`
	CompanyId    string    `gorm:"index;not null" json:"company_id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	CompanyName  string    `gorm:"size:100" json:"company_name"`
	AddressLine1 string    `gorm:"size:255" json:"address_line1"`
	AddressLine2 string    `gorm:"size:255" json:"address_line2"`
	City         string    `gorm:"size:100" json:"city"`
	Postcode     string    `gorm:"size:20" json:"postcode"`
	Email        string    `gorm:"size:100" json:"email"`
	Phone        string    `gorm:"size:20" json:"phone"`
	Notes        string    `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name         string `json:"name" validate:"required"`
	CompanyName  string `json:"company_name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	Postcode     string `json:"postcode"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Notes        string `json:"notes"`
}

func (input *NewCustomer) validateFields(ctx context.Context, companyId string, id int) error {
	if err := validateInput(input); err != nil {
		return err
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return utils.NewValidationError("email", "invalid email address")
	}
	// validate unique name
	if err := utils.ValidateUnique[Customer](ctx, companyId, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, &utils.TenantIsolationError{Op: "CreateCustomer"}
	}

	if err := input.validateFields(ctx, companyId, 0); err != nil {
		return nil, err
	}

	customer := Customer{
		CompanyId:    companyId,
		Name:         input.Name,
		CompanyName:  input.CompanyName,
		AddressLine1: input.AddressLine1,
		AddressLine2: input.AddressLine2,
		City:         input.City,
		Postcode:     input.Postcode,
		Email:        input.Email,
		Phone:        input.Phone,
		Notes:        input.Notes,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// UpdateCustomer edits the live record only. Existing document and job
// snapshots are left untouched by design.
func UpdateCustomer(ctx context.Context, id int, input *NewCustomer) (*Customer, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, &utils.TenantIsolationError{Op: "UpdateCustomer"}
	}

	if err := input.validateFields(ctx, companyId, id); err != nil {
		return nil, err
	}

	customer, err := utils.FetchModel[Customer](ctx, companyId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(customer).Updates(map[string]interface{}{
		"Name":         input.Name,
		"CompanyName":  input.CompanyName,
		"AddressLine1": input.AddressLine1,
		"AddressLine2": input.AddressLine2,
		"City":         input.City,
		"Postcode":     input.Postcode,
		"Email":        input.Email,
		"Phone":        input.Phone,
		"Notes":        input.Notes,
	}).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// DeleteCustomer removes the live record after anonymizing every dependent
// document and job snapshot in the same transaction. Dependent rows are
// never deleted (statutory retention); each snapshot is replaced whole with
// the fixed anonymized shape, so a crash leaves either the original or the
// fully anonymized state, never a mixture.
func DeleteCustomer(ctx context.Context, id int) (*Customer, error) {
	logger := config.GetLogger()
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, &utils.TenantIsolationError{Op: "DeleteCustomer"}
	}

	customer, err := utils.FetchModel[Customer](ctx, companyId, id)
	if err != nil {
		return nil, err
	}

	// serialize anonymization per company across instances
	release, err := utils.CompanyLock(ctx, companyId, "anonymize", "customer", "DeleteCustomer")
	if err != nil {
		return nil, err
	}
	defer release()

	anonymized := AnonymizedCustomerSnapshot().columnValues("customer_")

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Model(&Document{}).
		Where("company_id = ? AND customer_id = ?", companyId, id).
		Updates(anonymized).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Model(&Job{}).
		Where("company_id = ? AND customer_id = ?", companyId, id).
		Updates(anonymized).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(customer).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := utils.RemoveRedisList[Document](companyId); err != nil {
		config.LogError(logger, "customer", "DeleteCustomer", "clear document list cache", companyId, err)
	}

	return customer, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, &utils.TenantIsolationError{Op: "GetCustomer"}
	}

	return utils.FetchModel[Customer](ctx, companyId, id)
}

func GetCustomers(ctx context.Context, name *string) ([]*Customer, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, &utils.TenantIsolationError{Op: "GetCustomers"}
	}

	db := config.GetDB()
	var results []*Customer
	dbCtx := db.WithContext(ctx).Where("company_id = ?", companyId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
