package models_test

import (
	"testing"

	"github.com/rahim5123rk-sys/trade-flow-app-sub000/models"
)

func TestNewCustomerSnapshotFreezesAllFields(t *testing.T) {
	customer := &models.Customer{
		Name:         "Sarah Jones",
		CompanyName:  "Jones Heating Ltd",
		AddressLine1: "12 High Street",
		AddressLine2: "Unit 4",
		City:         "Leeds",
		Postcode:     "LS1 4DY",
		Email:        "sarah@example.com",
		Phone:        "07700900123",
	}

	snapshot := models.NewCustomerSnapshot(customer)

	if snapshot.Name != customer.Name ||
		snapshot.CompanyName != customer.CompanyName ||
		snapshot.AddressLine1 != customer.AddressLine1 ||
		snapshot.AddressLine2 != customer.AddressLine2 ||
		snapshot.City != customer.City ||
		snapshot.Postcode != customer.Postcode ||
		snapshot.Email != customer.Email ||
		snapshot.Phone != customer.Phone {
		t.Fatalf("snapshot does not match customer: %+v", snapshot)
	}

	// mutating the live record never reaches the snapshot
	customer.Name = "Renamed"
	customer.Email = "new@example.com"
	if snapshot.Name != "Sarah Jones" || snapshot.Email != "sarah@example.com" {
		t.Fatal("snapshot changed with the live record")
	}
}

func TestAnonymizedSnapshotShape(t *testing.T) {
	anonymized := models.AnonymizedCustomerSnapshot()

	if anonymized.Name != models.AnonymizedCustomerName {
		t.Fatalf("anonymized name = %q, want %q", anonymized.Name, models.AnonymizedCustomerName)
	}
	if anonymized.CompanyName != "" || anonymized.AddressLine1 != "" || anonymized.AddressLine2 != "" ||
		anonymized.City != "" || anonymized.Postcode != "" || anonymized.Email != "" || anonymized.Phone != "" {
		t.Fatalf("anonymized snapshot must clear every field but the name: %+v", anonymized)
	}
	if !anonymized.IsAnonymized() {
		t.Fatal("AnonymizedCustomerSnapshot must report IsAnonymized")
	}
}

func TestIsAnonymizedRejectsPartialErasure(t *testing.T) {
	partial := models.AnonymizedCustomerSnapshot()
	partial.Email = "left-behind@example.com"
	if partial.IsAnonymized() {
		t.Fatal("a snapshot with residual personal data must not report IsAnonymized")
	}

	// a real customer who happens to share the sentinel name is not anonymized
	lookalike := models.CustomerSnapshot{Name: models.AnonymizedCustomerName, City: "Leeds"}
	if lookalike.IsAnonymized() {
		t.Fatal("sentinel name alone must not count as anonymized")
	}
}
