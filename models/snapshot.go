package models

// Frozen display values embedded into documents and jobs at creation time.
// Distinct from the live Customer aggregate: once written, a snapshot is
// never re-read from the customer record. The only legal rewrite is the
// anonymization pass in DeleteCustomer.

// AnonymizedCustomerName is the sentinel written over a deleted customer's
// name. Retained documents keep rendering with it after GDPR erasure.
const AnonymizedCustomerName = "[Deleted Customer]"

type CustomerSnapshot struct {
	Name         string `gorm:"size:100" json:"name"`
	CompanyName  string `gorm:"size:100" json:"company_name"`
	AddressLine1 string `gorm:"size:255" json:"address_line1"`
	AddressLine2 string `gorm:"size:255" json:"address_line2"`
	City         string `gorm:"size:100" json:"city"`
	Postcode     string `gorm:"size:20" json:"postcode"`
	Email        string `gorm:"size:100" json:"email"`
	Phone        string `gorm:"size:20" json:"phone"`
}

// NewCustomerSnapshot freezes the customer's then-current display fields.
func NewCustomerSnapshot(customer *Customer) CustomerSnapshot {
	return CustomerSnapshot{
		Name:         customer.Name,
		CompanyName:  customer.CompanyName,
		AddressLine1: customer.AddressLine1,
		AddressLine2: customer.AddressLine2,
		City:         customer.City,
		Postcode:     customer.Postcode,
		Email:        customer.Email,
		Phone:        customer.Phone,
	}
}

// AnonymizedCustomerSnapshot is the fixed shape written over every dependent
// snapshot when the source customer is deleted: sentinel name, everything
// else cleared. Applied whole, never field by field.
func AnonymizedCustomerSnapshot() CustomerSnapshot {
	return CustomerSnapshot{Name: AnonymizedCustomerName}
}

func (s CustomerSnapshot) IsAnonymized() bool {
	return s.Name == AnonymizedCustomerName &&
		s.CompanyName == "" &&
		s.AddressLine1 == "" &&
		s.AddressLine2 == "" &&
		s.City == "" &&
		s.Postcode == "" &&
		s.Email == "" &&
		s.Phone == ""
}

// columnValues returns the snapshot as gorm update values keyed by the
// embedded column names, so a rewrite replaces every field in one statement.
func (s CustomerSnapshot) columnValues(prefix string) map[string]interface{} {
	return map[string]interface{}{
		prefix + "name":          s.Name,
		prefix + "company_name":  s.CompanyName,
		prefix + "address_line1": s.AddressLine1,
		prefix + "address_line2": s.AddressLine2,
		prefix + "city":          s.City,
		prefix + "postcode":      s.Postcode,
		prefix + "email":         s.Email,
		prefix + "phone":         s.Phone,
	}
}

// SiteAddress is the frozen job-site address, independent of the billing
// address in the customer snapshot.
type SiteAddress struct {
	Line1    string `gorm:"size:255" json:"line1"`
	Line2    string `gorm:"size:255" json:"line2"`
	City     string `gorm:"size:100" json:"city"`
	Postcode string `gorm:"size:20" json:"postcode"`
}
