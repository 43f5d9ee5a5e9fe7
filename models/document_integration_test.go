package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rahim5123rk-sys/trade-flow-app-sub000/config"
	"github.com/rahim5123rk-sys/trade-flow-app-sub000/models"
	"github.com/rahim5123rk-sys/trade-flow-app-sub000/utils"
)

// End-to-end flows against a real MySQL instance.
//
// Usage: INTEGRATION_TESTS=1 go test ./models -run Integration -v
// (DB_* env vars as for the server; redis is optional, cache helpers
// degrade to no-ops without it.)

var integrationSetup sync.Once

func integrationContext(t *testing.T) (context.Context, *models.Company) {
	t.Helper()
	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run database tests")
	}

	integrationSetup.Do(func() {
		config.ConnectDatabaseWithRetry()
		config.ConnectRedis()
		if db := config.GetDB(); db != nil {
			if err := models.MigrateAll(db); err != nil {
				panic(err)
			}
		}
	})
	if config.GetDB() == nil {
		t.Fatal("database not initialized")
	}

	ctx := context.Background()
	company, err := models.CreateCompany(ctx, &models.NewCompany{
		Name: fmt.Sprintf("Test Co %d", time.Now().UnixNano()),
	})
	if err != nil {
		t.Fatalf("create company: %v", err)
	}
	return utils.SetCompanyIdInContext(ctx, company.ID), company
}

func createTestCustomer(t *testing.T, ctx context.Context, name string) *models.Customer {
	t.Helper()
	customer, err := models.CreateCustomer(ctx, &models.NewCustomer{
		Name:         name,
		AddressLine1: "12 High Street",
		City:         "Leeds",
		Postcode:     "LS1 4DY",
		Email:        "billing@example.com",
		Phone:        "07700900123",
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return customer
}

func standardItems() []models.LineItemInput {
	return []models.LineItemInput{
		{Description: "Labour", Quantity: dec("2"), UnitPrice: dec("50"), VatPercent: dec("20")},
		{Description: "Parts", Quantity: dec("1"), UnitPrice: dec("30"), VatPercent: dec("0")},
	}
}

func TestIntegrationInvoiceCreateAndNumbering(t *testing.T) {
	ctx, _ := integrationContext(t)
	customer := createTestCustomer(t, ctx, "Numbering Customer")

	first, err := models.CreateDocument(ctx, &models.NewDocument{
		Type:         models.DocumentTypeInvoice,
		DocumentDate: time.Now().UTC(),
		CustomerId:   customer.ID,
		Items:        standardItems(),
	})
	if err != nil {
		t.Fatalf("create first invoice: %v", err)
	}
	if first.Number != 1 {
		t.Fatalf("first invoice number = %d, want 1", first.Number)
	}
	if first.CurrentStatus != models.DocumentStatusUnpaid {
		t.Fatalf("new invoice status = %s, want Unpaid", first.CurrentStatus)
	}
	assertDecimal(t, "Subtotal", first.Subtotal, "130.00")
	assertDecimal(t, "TotalVat", first.TotalVat, "20.00")
	assertDecimal(t, "TotalAmount", first.TotalAmount, "150.00")
	assertDecimal(t, "BalanceDue", first.BalanceDue, "150.00")
	if first.CustomerSnapshot.Name != customer.Name {
		t.Fatalf("snapshot name = %q, want %q", first.CustomerSnapshot.Name, customer.Name)
	}

	second, err := models.CreateDocument(ctx, &models.NewDocument{
		Type:         models.DocumentTypeInvoice,
		DocumentDate: time.Now().UTC(),
		CustomerId:   customer.ID,
		Items:        standardItems(),
	})
	if err != nil {
		t.Fatalf("create second invoice: %v", err)
	}
	if second.Number != 2 {
		t.Fatalf("second invoice number = %d, want 2", second.Number)
	}

	// quotes count independently
	quote, err := models.CreateDocument(ctx, &models.NewDocument{
		Type:         models.DocumentTypeQuote,
		DocumentDate: time.Now().UTC(),
		CustomerId:   customer.ID,
		Items:        standardItems(),
	})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}
	if quote.Number != 1 {
		t.Fatalf("first quote number = %d, want 1", quote.Number)
	}
	if quote.CurrentStatus != models.DocumentStatusDraft {
		t.Fatalf("new quote status = %s, want Draft", quote.CurrentStatus)
	}
}

func TestIntegrationAllocatorUnderContention(t *testing.T) {
	ctx, company := integrationContext(t)

	const workers = 10
	numbers := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				n, err := models.NextDocumentNumber(ctx, company.ID, models.DocumentTypeInvoice)
				if err == nil {
					numbers <- n
					return
				}
				var conflict *utils.AllocationConflictError
				if errors.As(err, &conflict) {
					continue // whole-operation retry, as callers do
				}
				t.Errorf("allocate: %v", err)
				return
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int64]bool)
	for n := range numbers {
		if seen[n] {
			t.Fatalf("number %d issued twice", n)
		}
		seen[n] = true
	}
	if len(seen) != workers {
		t.Fatalf("issued %d distinct numbers, want %d", len(seen), workers)
	}
}

func TestIntegrationQuoteLifecycle(t *testing.T) {
	ctx, _ := integrationContext(t)
	customer := createTestCustomer(t, ctx, "Lifecycle Customer")

	quote, err := models.CreateDocument(ctx, &models.NewDocument{
		Type:         models.DocumentTypeQuote,
		DocumentDate: time.Now().UTC(),
		CustomerId:   customer.ID,
		Items:        standardItems(),
	})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}

	if _, err := models.TransitionDocumentStatus(ctx, quote.ID, models.DocumentStatusAccepted); err == nil {
		t.Fatal("Draft -> Accepted should be rejected")
	}

	sent, err := models.TransitionDocumentStatus(ctx, quote.ID, models.DocumentStatusSent)
	if err != nil {
		t.Fatalf("send quote: %v", err)
	}
	if sent.CurrentStatus != models.DocumentStatusSent {
		t.Fatalf("status = %s, want Sent", sent.CurrentStatus)
	}

	// un-send is an edit, not a transition
	back, err := models.UnsendQuote(ctx, quote.ID)
	if err != nil {
		t.Fatalf("unsend quote: %v", err)
	}
	if back.CurrentStatus != models.DocumentStatusDraft {
		t.Fatalf("status after unsend = %s, want Draft", back.CurrentStatus)
	}

	if _, err := models.TransitionDocumentStatus(ctx, quote.ID, models.DocumentStatusSent); err != nil {
		t.Fatalf("re-send quote: %v", err)
	}
	accepted, err := models.TransitionDocumentStatus(ctx, quote.ID, models.DocumentStatusAccepted)
	if err != nil {
		t.Fatalf("accept quote: %v", err)
	}
	if !models.IsTerminalStatus(accepted.Type, accepted.CurrentStatus) {
		t.Fatal("Accepted should be terminal")
	}

	// terminal documents are immutable
	_, err = models.UpdateDocument(ctx, quote.ID, &models.UpdateDocumentInput{
		DocumentDate: time.Now().UTC(),
		Items:        standardItems(),
	})
	if !utils.IsValidationError(err) {
		t.Fatalf("editing an accepted quote should fail with a validation error, got %v", err)
	}
}

func TestIntegrationPaymentsDriveInvoiceToPaid(t *testing.T) {
	ctx, _ := integrationContext(t)
	customer := createTestCustomer(t, ctx, "Payment Customer")

	invoice, err := models.CreateDocument(ctx, &models.NewDocument{
		Type:         models.DocumentTypeInvoice,
		DocumentDate: time.Now().UTC(),
		CustomerId:   customer.ID,
		Items:        standardItems(), // total 150.00
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	partial, err := models.RecordDocumentPayment(ctx, invoice.ID, dec("100"))
	if err != nil {
		t.Fatalf("record partial payment: %v", err)
	}
	if partial.CurrentStatus != models.DocumentStatusUnpaid {
		t.Fatalf("partially paid invoice status = %s, want Unpaid", partial.CurrentStatus)
	}
	assertDecimal(t, "BalanceDue", partial.BalanceDue, "50.00")

	paid, err := models.RecordDocumentPayment(ctx, invoice.ID, dec("50"))
	if err != nil {
		t.Fatalf("record final payment: %v", err)
	}
	if paid.CurrentStatus != models.DocumentStatusPaid {
		t.Fatalf("settled invoice status = %s, want Paid", paid.CurrentStatus)
	}
	assertDecimal(t, "BalanceDue", paid.BalanceDue, "0")

	if _, err := models.RecordDocumentPayment(ctx, invoice.ID, dec("1")); !utils.IsValidationError(err) {
		t.Fatalf("paying a Paid invoice should fail with a validation error, got %v", err)
	}
}

func TestIntegrationOverdueSweep(t *testing.T) {
	ctx, _ := integrationContext(t)
	customer := createTestCustomer(t, ctx, "Overdue Customer")

	pastDue := time.Now().UTC().Add(-48 * time.Hour)
	invoice, err := models.CreateDocument(ctx, &models.NewDocument{
		Type:         models.DocumentTypeInvoice,
		DocumentDate: pastDue.Add(-24 * time.Hour),
		DueDate:      &pastDue,
		CustomerId:   customer.ID,
		Items:        standardItems(),
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	scanCtx := utils.SetSkipTenantScopeInContext(context.Background(), true)
	if _, err := models.MarkOverdueInvoices(scanCtx, time.Now().UTC()); err != nil {
		t.Fatalf("mark overdue: %v", err)
	}

	got, err := models.GetDocument(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("fetch invoice: %v", err)
	}
	if got.CurrentStatus != models.DocumentStatusOverdue {
		t.Fatalf("status after sweep = %s, want Overdue", got.CurrentStatus)
	}

	// the sweep is idempotent
	if _, err := models.MarkOverdueInvoices(scanCtx, time.Now().UTC()); err != nil {
		t.Fatalf("second sweep: %v", err)
	}

	// an overdue invoice can still be settled
	settled, err := models.RecordDocumentPayment(ctx, invoice.ID, got.BalanceDue)
	if err != nil {
		t.Fatalf("settle overdue invoice: %v", err)
	}
	if settled.CurrentStatus != models.DocumentStatusPaid {
		t.Fatalf("status = %s, want Paid", settled.CurrentStatus)
	}
}

func TestIntegrationCustomerDeletionAnonymizesSnapshots(t *testing.T) {
	ctx, _ := integrationContext(t)
	customer := createTestCustomer(t, ctx, "GDPR Customer")

	job, err := models.CreateJob(ctx, &models.NewJob{
		CustomerId: customer.ID,
		Title:      "Boiler replacement",
		SiteAddress: models.SiteAddress{
			Line1: "4 Mill Lane", City: "York", Postcode: "YO1 7HT",
		},
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	invoice, err := models.CreateDocument(ctx, &models.NewDocument{
		Type:         models.DocumentTypeInvoice,
		DocumentDate: time.Now().UTC(),
		CustomerId:   customer.ID,
		JobId:        job.ID,
		Items:        standardItems(),
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	if _, err := models.DeleteCustomer(ctx, customer.ID); err != nil {
		t.Fatalf("delete customer: %v", err)
	}

	if _, err := models.GetCustomer(ctx, customer.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("deleted customer should be gone, got %v", err)
	}

	// the document survives with the same number and money, anonymized
	got, err := models.GetDocument(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("invoice must survive customer deletion: %v", err)
	}
	if !got.CustomerSnapshot.IsAnonymized() {
		t.Fatalf("invoice snapshot not anonymized: %+v", got.CustomerSnapshot)
	}
	if got.Number != invoice.Number {
		t.Fatalf("invoice number changed: %d -> %d", invoice.Number, got.Number)
	}
	if !got.TotalAmount.Equal(invoice.TotalAmount) {
		t.Fatalf("invoice total changed: %s -> %s", invoice.TotalAmount, got.TotalAmount)
	}

	gotJob, err := models.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("job must survive customer deletion: %v", err)
	}
	if !gotJob.CustomerSnapshot.IsAnonymized() {
		t.Fatalf("job snapshot not anonymized: %+v", gotJob.CustomerSnapshot)
	}
	// the site address is not part of the customer snapshot
	if gotJob.SiteAddress.Line1 != "4 Mill Lane" {
		t.Fatalf("site address should be untouched, got %+v", gotJob.SiteAddress)
	}
}

func TestIntegrationTenantIsolation(t *testing.T) {
	ctxA, _ := integrationContext(t)
	ctxB, _ := integrationContext(t)

	customer := createTestCustomer(t, ctxA, "Isolated Customer")
	invoice, err := models.CreateDocument(ctxA, &models.NewDocument{
		Type:         models.DocumentTypeInvoice,
		DocumentDate: time.Now().UTC(),
		CustomerId:   customer.ID,
		Items:        standardItems(),
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	if _, err := models.GetDocument(ctxB, invoice.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("cross-company fetch must look like a missing record, got %v", err)
	}
	if _, err := models.TransitionDocumentStatus(ctxB, invoice.ID, models.DocumentStatusPaid); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("cross-company transition must look like a missing record, got %v", err)
	}

	listB, err := models.GetDocuments(ctxB, nil)
	if err != nil {
		t.Fatalf("list company B documents: %v", err)
	}
	for _, doc := range listB {
		if doc.ID == invoice.ID {
			t.Fatal("company A document leaked into company B listing")
		}
	}

	var noCompany *utils.TenantIsolationError
	if _, err := models.GetDocuments(context.Background(), nil); !errors.As(err, &noCompany) {
		t.Fatalf("missing company scope must be a TenantIsolationError, got %v", err)
	}
}

func TestIntegrationUpdateRecomputesMoney(t *testing.T) {
	ctx, _ := integrationContext(t)
	customer := createTestCustomer(t, ctx, "Update Customer")

	invoice, err := models.CreateDocument(ctx, &models.NewDocument{
		Type:         models.DocumentTypeInvoice,
		DocumentDate: time.Now().UTC(),
		CustomerId:   customer.ID,
		Items:        standardItems(),
		Partial:      dec("30"),
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	assertDecimal(t, "BalanceDue", invoice.BalanceDue, "120.00")

	updated, err := models.UpdateDocument(ctx, invoice.ID, &models.UpdateDocumentInput{
		DocumentDate: invoice.DocumentDate,
		Items: []models.LineItemInput{
			{Description: "Labour", Quantity: dec("1"), UnitPrice: dec("100"), VatPercent: dec("0")},
		},
	})
	if err != nil {
		t.Fatalf("update invoice: %v", err)
	}

	// recorded payment survives the edit and the balance tracks the new total
	assertDecimal(t, "TotalAmount", updated.TotalAmount, "100.00")
	assertDecimal(t, "PartialPayment", updated.PartialPayment, "30.00")
	assertDecimal(t, "BalanceDue", updated.BalanceDue, "70.00")
	if len(updated.Items) != 1 {
		t.Fatalf("items not replaced, got %d", len(updated.Items))
	}
}
