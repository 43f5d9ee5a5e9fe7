package models

import (
	"context"
	"time"

	"github.com/rahim5123rk-sys/trade-flow-app-sub000/config"
	"github.com/rahim5123rk-sys/trade-flow-app-sub000/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Document is an invoice or a quote. Everything a renderer needs is on the
// row: the frozen customer snapshot, the frozen site address and the derived
// money block. No lookups against live records are ever required (or
// permitted) for an existing document.
type Document struct {
	ID            int            `gorm:"primary_key" json:"id"`
	CompanyId     string         `gorm:"not null;uniqueIndex:udx_documents_company_type_number,priority:1" json:"company_id"`
	Type          DocumentType   `gorm:"type:enum('Invoice','Quote');not null;uniqueIndex:udx_documents_company_type_number,priority:2" json:"type"`
	Number        int64          `gorm:"not null;uniqueIndex:udx_documents_company_type_number,priority:3" json:"number"`
	Reference     string         `gorm:"size:255" json:"reference"`
	CurrentStatus DocumentStatus `gorm:"type:enum('Draft','Sent','Accepted','Declined','Unpaid','Paid','Overdue');not null" json:"current_status"`
	DocumentDate  time.Time      `gorm:"not null" json:"document_date"`
	DueDate       *time.Time     `json:"due_date"`    // invoices
	ExpiryDate    *time.Time     `json:"expiry_date"` // quotes

	// CustomerId goes stale after customer deletion; rendering only ever
	// uses the snapshot.
	CustomerId       int              `gorm:"index" json:"customer_id"`
	JobId            int              `gorm:"index;default:null" json:"job_id"`
	CustomerSnapshot CustomerSnapshot `gorm:"embedded;embeddedPrefix:customer_" json:"customer_snapshot"`
	SiteAddress      SiteAddress      `gorm:"embedded;embeddedPrefix:site_" json:"site_address"`

	Items []LineItem `gorm:"foreignKey:DocumentId" json:"items"`

	// derived money block; recomputed on every items/discount change
	Subtotal        decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"subtotal"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"discount_percent"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"discount_amount"`
	TotalVat        decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"total_vat"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"total_amount"`
	PartialPayment  decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"partial_payment"`
	BalanceDue      decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"balance_due"`

	Notes       string `gorm:"type:text" json:"notes"`
	PaymentInfo string `gorm:"type:text" json:"payment_info"`
	Terms       string `gorm:"type:text" json:"terms"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// LineItem order is display-only; the calculator is order independent.
type LineItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	DocumentId  int             `gorm:"index;not null" json:"document_id"`
	Position    int             `gorm:"not null" json:"position"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	VatPercent  decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"vat_percent"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewDocument struct {
	Type         DocumentType    `json:"type" validate:"required"`
	Reference    string          `json:"reference"`
	DocumentDate time.Time       `json:"document_date" validate:"required"`
	DueDate      *time.Time      `json:"due_date"`
	ExpiryDate   *time.Time      `json:"expiry_date"`
	CustomerId   int             `json:"customer_id" validate:"required"`
	JobId        int             `json:"job_id"`
	Items        []LineItemInput `json:"items"`
	Discount     decimal.Decimal `json:"discount_percent"`
	Partial      decimal.Decimal `json:"partial_payment"`
	Notes        string          `json:"notes"`
	PaymentInfo  string          `json:"payment_info"`
	Terms        string          `json:"terms"`
}

// UpdateDocumentInput carries the editable fields. Type, number, customer
// snapshot and partial payment are not editable here; payments go through
// RecordDocumentPayment.
type UpdateDocumentInput struct {
	Reference    string          `json:"reference"`
	DocumentDate time.Time       `json:"document_date" validate:"required"`
	DueDate      *time.Time      `json:"due_date"`
	ExpiryDate   *time.Time      `json:"expiry_date"`
	Items        []LineItemInput `json:"items"`
	Discount     decimal.Decimal `json:"discount_percent"`
	Notes        string          `json:"notes"`
	PaymentInfo  string          `json:"payment_info"`
	Terms        string          `json:"terms"`
}

type DocumentFilter struct {
	Type       *DocumentType   `json:"type"`
	Status     *DocumentStatus `json:"status"`
	CustomerId *int            `json:"customer_id"`
	Reference  *string         `json:"reference"`
}

func (f *DocumentFilter) isEmpty() bool {
	return f == nil || (f.Type == nil && f.Status == nil && f.CustomerId == nil && f.Reference == nil)
}

func mapLineItems(items []LineItemInput) []LineItem {
	out := make([]LineItem, 0, len(items))
	for i, item := range items {
		out = append(out, LineItem{
			Position:    i + 1,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			VatPercent:  item.VatPercent,
		})
	}
	return out
}

func (d *Document) lineItemInputs() []LineItemInput {
	out := make([]LineItemInput, 0, len(d.Items))
	for _, item := range d.Items {
		out = append(out, LineItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			VatPercent:  item.VatPercent,
		})
	}
	return out
}

func (d *Document) applySummary(summary *FinancialSummary) {
	d.Subtotal = summary.Subtotal
	d.DiscountPercent = summary.DiscountPercent
	d.DiscountAmount = summary.DiscountAmount
	d.TotalVat = summary.TotalVat
	d.TotalAmount = summary.Total
	d.PartialPayment = summary.PartialPayment
	d.BalanceDue = summary.BalanceDue
}

// Summary re-derives the money block from the stored items; used by callers
// that want a FinancialSummary value (and by tests asserting the stored
// fields are a faithful cache).
func (d *Document) Summary() (*FinancialSummary, error) {
	return ComputeFinancialSummary(d.lineItemInputs(), d.DiscountPercent, d.PartialPayment)
}

func fetchDocument(ctx context.Context, companyId string, id int) (*Document, error) {
	db := config.GetDB()
	var doc Document
	err := db.WithContext(ctx).
		Where("company_id = ?", companyId).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("position") }).
		First(&doc, id).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &doc, nil
}

func (input *NewDocument) validateDraft(ctx context.Context, companyId string) error {
	if err := validateInput(input); err != nil {
		return err
	}
	if input.Type != DocumentTypeInvoice && input.Type != DocumentTypeQuote {
		return utils.NewValidationError("type", "invalid document type")
	}
	// an empty document may never be finalized
	if len(input.Items) == 0 {
		return utils.NewValidationError("items", "document must have at least one line item")
	}
	// exists customer
	if err := utils.ValidateResourceId[Customer](ctx, companyId, input.CustomerId); err != nil {
		return err
	}
	// exists job
	if input.JobId > 0 {
		if err := utils.ValidateResourceId[Job](ctx, companyId, input.JobId); err != nil {
			return err
		}
	}
	return nil
}

// CreateDocument finalizes a draft: validate, allocate a number, freeze the
// customer/job snapshots, compute the money block, set the initial status
// and persist. Nothing is allocated or written until the draft has passed
// every validation, so a doomed draft costs neither a number nor a row.
func CreateDocument(ctx context.Context, input *NewDocument) (*Document, error) {
	logger := config.GetLogger()
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, &utils.TenantIsolationError{Op: "CreateDocument"}
	}

	if err := input.validateDraft(ctx, companyId); err != nil {
		return nil, err
	}

	customer, err := utils.FetchModel[Customer](ctx, companyId, input.CustomerId)
	if err != nil {
		return nil, err
	}

	var siteAddress SiteAddress
	if input.JobId > 0 {
		job, err := utils.FetchModel[Job](ctx, companyId, input.JobId)
		if err != nil {
			return nil, err
		}
		siteAddress = job.SiteAddress
	}

	summary, err := ComputeFinancialSummary(input.Items, input.Discount, input.Partial)
	if err != nil {
		return nil, err
	}

	// draft is valid; now spend a number
	number, err := NextDocumentNumber(ctx, companyId, input.Type)
	if err != nil {
		return nil, err
	}

	doc := Document{
		CompanyId:        companyId,
		Type:             input.Type,
		Number:           number,
		Reference:        input.Reference,
		CurrentStatus:    InitialDocumentStatus(input.Type),
		DocumentDate:     input.DocumentDate,
		DueDate:          input.DueDate,
		ExpiryDate:       input.ExpiryDate,
		CustomerId:       customer.ID,
		JobId:            input.JobId,
		CustomerSnapshot: NewCustomerSnapshot(customer),
		SiteAddress:      siteAddress,
		Items:            mapLineItems(input.Items),
		Notes:            input.Notes,
		PaymentInfo:      input.PaymentInfo,
		Terms:            input.Terms,
	}
	doc.applySummary(summary)

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&doc).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := utils.RemoveRedisList[Document](companyId); err != nil {
		config.LogError(logger, "document", "CreateDocument", "clear document list cache", companyId, err)
	}

	return &doc, nil
}

// UpdateDocument applies the permitted edits and recomputes every derived
// field. Terminal documents (Paid, Accepted, Declined) are immutable.
func UpdateDocument(ctx context.Context, id int, input *UpdateDocumentInput) (*Document, error) {
	logger := config.GetLogger()
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, &utils.TenantIsolationError{Op: "UpdateDocument"}
	}

	if err := validateInput(input); err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, utils.NewValidationError("items", "document must have at least one line item")
	}

	doc, err := fetchDocument(ctx, companyId, id)
	if err != nil {
		return nil, err
	}
	if IsTerminalStatus(doc.Type, doc.CurrentStatus) {
		return nil, utils.NewValidationError("current_status", "cannot edit a "+string(doc.CurrentStatus)+" document")
	}

	// recorded payments survive edits; the balance is recomputed against them
	summary, err := ComputeFinancialSummary(input.Items, input.Discount, doc.PartialPayment)
	if err != nil {
		return nil, err
	}

	items := mapLineItems(input.Items)
	for i := range items {
		items[i].DocumentId = doc.ID
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("document_id = ?", doc.ID).Delete(&LineItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Create(&items).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Model(doc).Updates(map[string]interface{}{
		"Reference":       input.Reference,
		"DocumentDate":    input.DocumentDate,
		"DueDate":         input.DueDate,
		"ExpiryDate":      input.ExpiryDate,
		"Subtotal":        summary.Subtotal,
		"DiscountPercent": summary.DiscountPercent,
		"DiscountAmount":  summary.DiscountAmount,
		"TotalVat":        summary.TotalVat,
		"TotalAmount":     summary.Total,
		"BalanceDue":      summary.BalanceDue,
		"Notes":           input.Notes,
		"PaymentInfo":     input.PaymentInfo,
		"Terms":           input.Terms,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	doc.Items = items
	if err := utils.RemoveRedisList[Document](companyId); err != nil {
		config.LogError(logger, "document", "UpdateDocument", "clear document list cache", companyId, err)
	}

	return doc, nil
}

// TransitionDocumentStatus moves a document through its lifecycle. Illegal
// transitions fail without mutating anything; idempotent re-application of
// Paid/Overdue returns the document unchanged.
func TransitionDocumentStatus(ctx context.Context, id int, newStatus DocumentStatus) (*Document, error) {
	logger := config.GetLogger()
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, &utils.TenantIsolationError{Op: "TransitionDocumentStatus"}
	}

	doc, err := fetchDocument(ctx, companyId, id)
	if err != nil {
		return nil, err
	}
	if !IsValidStatus(doc.Type, newStatus) {
		return nil, utils.NewValidationError("current_status", "status "+string(newStatus)+" is not valid for a "+string(doc.Type))
	}
	if err := ValidateStatusTransition(doc.Type, doc.CurrentStatus, newStatus); err != nil {
		return nil, err
	}
	if doc.CurrentStatus == newStatus {
		return doc, nil
	}

	values := map[string]interface{}{
		"CurrentStatus": newStatus,
	}
	if newStatus == DocumentStatusPaid {
		// Paid means settled in full
		values["PartialPayment"] = doc.TotalAmount
		values["BalanceDue"] = decimal.Zero
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(doc).Updates(values).Error; err != nil {
		return nil, err
	}

	if err := utils.RemoveRedisList[Document](companyId); err != nil {
		config.LogError(logger, "document", "TransitionDocumentStatus", "clear document list cache", companyId, err)
	}

	return doc, nil
}

// RecordDocumentPayment records a payment against an invoice. The invoice
// becomes Paid only when the recomputed balance reaches zero; a non-zero
// partial payment never changes the status by itself.
func RecordDocumentPayment(ctx context.Context, id int, amount decimal.Decimal) (*Document, error) {
	logger := config.GetLogger()
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, &utils.TenantIsolationError{Op: "RecordDocumentPayment"}
	}

	if !amount.IsPositive() {
		return nil, utils.NewValidationError("amount", "payment amount must be positive")
	}

	doc, err := fetchDocument(ctx, companyId, id)
	if err != nil {
		return nil, err
	}
	if doc.Type != DocumentTypeInvoice {
		return nil, utils.NewValidationError("type", "payments can only be recorded against invoices")
	}
	if doc.CurrentStatus == DocumentStatusPaid {
		return nil, utils.NewValidationError("current_status", "invoice is already paid")
	}

	summary, err := ComputeFinancialSummary(doc.lineItemInputs(), doc.DiscountPercent, doc.PartialPayment.Add(amount))
	if err != nil {
		return nil, err
	}

	values := map[string]interface{}{
		"PartialPayment": summary.PartialPayment,
		"BalanceDue":     summary.BalanceDue,
	}
	if summary.BalanceDue.IsZero() {
		if err := ValidateStatusTransition(doc.Type, doc.CurrentStatus, DocumentStatusPaid); err != nil {
			return nil, err
		}
		values["CurrentStatus"] = DocumentStatusPaid
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(doc).Updates(values).Error; err != nil {
		return nil, err
	}

	if err := utils.RemoveRedisList[Document](companyId); err != nil {
		config.LogError(logger, "document", "RecordDocumentPayment", "clear document list cache", companyId, err)
	}

	return doc, nil
}

// UnsendQuote returns a Sent quote to Draft. This is an explicit edit, not a
// lifecycle transition, which is why it bypasses the transition table.
func UnsendQuote(ctx context.Context, id int) (*Document, error) {
	logger := config.GetLogger()
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, &utils.TenantIsolationError{Op: "UnsendQuote"}
	}

	doc, err := fetchDocument(ctx, companyId, id)
	if err != nil {
		return nil, err
	}
	if doc.Type != DocumentTypeQuote {
		return nil, utils.NewValidationError("type", "only quotes can be unsent")
	}
	if doc.CurrentStatus != DocumentStatusSent {
		return nil, utils.NewValidationError("current_status", "only a Sent quote can be unsent")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(doc).Update("CurrentStatus", DocumentStatusDraft).Error; err != nil {
		return nil, err
	}

	if err := utils.RemoveRedisList[Document](companyId); err != nil {
		config.LogError(logger, "document", "UnsendQuote", "clear document list cache", companyId, err)
	}

	return doc, nil
}

func GetDocument(ctx context.Context, id int) (*Document, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, &utils.TenantIsolationError{Op: "GetDocument"}
	}

	return fetchDocument(ctx, companyId, id)
}

// GetDocuments lists the company's documents, newest numbers first. The
// filter can only ever narrow within the company scope. The unfiltered list
// is served from the redis cache when warm.
func GetDocuments(ctx context.Context, filter *DocumentFilter) ([]*Document, error) {
	logger := config.GetLogger()
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, &utils.TenantIsolationError{Op: "GetDocuments"}
	}

	if filter.isEmpty() {
		cached, err := utils.RetrieveRedisList[Document](companyId)
		if err != nil {
			config.LogError(logger, "document", "GetDocuments", "read document list cache", companyId, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("company_id = ?", companyId)
	if filter != nil {
		if filter.Type != nil {
			dbCtx = dbCtx.Where("type = ?", *filter.Type)
		}
		if filter.Status != nil {
			dbCtx = dbCtx.Where("current_status = ?", *filter.Status)
		}
		if filter.CustomerId != nil {
			dbCtx = dbCtx.Where("customer_id = ?", *filter.CustomerId)
		}
		if filter.Reference != nil && *filter.Reference != "" {
			dbCtx = dbCtx.Where("reference LIKE ?", "%"+*filter.Reference+"%")
		}
	}

	var results []*Document
	err := dbCtx.
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("position") }).
		Order("type, number DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	if filter.isEmpty() {
		if err := utils.StoreRedisList[Document](results, companyId); err != nil {
			config.LogError(logger, "document", "GetDocuments", "write document list cache", companyId, err)
		}
	}

	return results, nil
}

// MarkOverdueInvoices flips Unpaid invoices past their due date to Overdue.
// It is a scheduled re-evaluation, not a user action: re-running it is a
// no-op for invoices already Overdue. Runs across all companies, so the
// caller's context must carry the skip-tenant-scope flag.
func MarkOverdueInvoices(ctx context.Context, now time.Time) (int64, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	var companyIds []string
	if err := db.WithContext(ctx).Model(&Document{}).
		Where("type = ? AND current_status = ? AND due_date IS NOT NULL AND due_date < ?",
			DocumentTypeInvoice, DocumentStatusUnpaid, now).
		Distinct("company_id").
		Pluck("company_id", &companyIds).Error; err != nil {
		return 0, err
	}
	if len(companyIds) == 0 {
		return 0, nil
	}

	result := db.WithContext(ctx).Model(&Document{}).
		Where("type = ? AND current_status = ? AND due_date IS NOT NULL AND due_date < ?",
			DocumentTypeInvoice, DocumentStatusUnpaid, now).
		Update("current_status", DocumentStatusOverdue)
	if result.Error != nil {
		return 0, result.Error
	}

	for _, companyId := range companyIds {
		if err := utils.RemoveRedisList[Document](companyId); err != nil {
			config.LogError(logger, "document", "MarkOverdueInvoices", "clear document list cache", companyId, err)
		}
	}

	return result.RowsAffected, nil
}
