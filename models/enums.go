package models

import (
	"errors"
	"strconv"
)

type DocumentType string

const (
	DocumentTypeInvoice DocumentType = "Invoice"
	DocumentTypeQuote   DocumentType = "Quote"
)

// convert enum to send response
func (t DocumentType) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(t))), nil
}

// convert input to enum type
func (t *DocumentType) UnmarshalJSON(b []byte) error {
	str, err := strconv.Unquote(string(b))
	if err != nil {
		return errors.New("document type must be string")
	}
	switch str {
	case "Invoice":
		*t = DocumentTypeInvoice
	case "Quote":
		*t = DocumentTypeQuote
	default:
		return errors.New("invalid document type")
	}
	return nil
}

// DocumentStatus covers both status domains; which values are legal for a
// document depends on its DocumentType (see lifecycle.go).
type DocumentStatus string

const (
	// quote statuses
	DocumentStatusDraft    DocumentStatus = "Draft"
	DocumentStatusSent     DocumentStatus = "Sent"
	DocumentStatusAccepted DocumentStatus = "Accepted"
	DocumentStatusDeclined DocumentStatus = "Declined"

	// invoice statuses
	DocumentStatusUnpaid  DocumentStatus = "Unpaid"
	DocumentStatusPaid    DocumentStatus = "Paid"
	DocumentStatusOverdue DocumentStatus = "Overdue"
)

func (s DocumentStatus) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(s))), nil
}

func (s *DocumentStatus) UnmarshalJSON(b []byte) error {
	str, err := strconv.Unquote(string(b))
	if err != nil {
		return errors.New("document status must be string")
	}
	documentStatuses := map[string]DocumentStatus{
		"Draft":    DocumentStatusDraft,
		"Sent":     DocumentStatusSent,
		"Accepted": DocumentStatusAccepted,
		"Declined": DocumentStatusDeclined,
		"Unpaid":   DocumentStatusUnpaid,
		"Paid":     DocumentStatusPaid,
		"Overdue":  DocumentStatusOverdue,
	}
	v, ok := documentStatuses[str]
	if !ok {
		return errors.New("invalid document status")
	}
	*s = v
	return nil
}
