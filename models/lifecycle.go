package models

import (
	"github.com/rahim5123rk-sys/trade-flow-app-sub000/utils"
)

// Status lifecycle per document type, validated in one place. Call sites
// never hand-roll status checks.
//
// Quote:   Draft -> Sent -> {Accepted, Declined}
// Invoice: Unpaid -> {Paid, Overdue}, Overdue -> Paid
//
// Sent -> Draft is deliberately NOT in the table: un-sending a quote is an
// edit (UnsendQuote), not a lifecycle event.

var quoteTransitions = map[DocumentStatus][]DocumentStatus{
	DocumentStatusDraft:    {DocumentStatusSent},
	DocumentStatusSent:     {DocumentStatusAccepted, DocumentStatusDeclined},
	DocumentStatusAccepted: {},
	DocumentStatusDeclined: {},
}

var invoiceTransitions = map[DocumentStatus][]DocumentStatus{
	DocumentStatusUnpaid:  {DocumentStatusPaid, DocumentStatusOverdue},
	DocumentStatusOverdue: {DocumentStatusPaid},
	DocumentStatusPaid:    {},
}

// idempotentStatuses may be re-applied onto themselves as a no-op. Overdue is
// set by a scheduled re-evaluation that must tolerate repeats, and a payment
// action replayed against an already-Paid invoice must not fail.
var idempotentStatuses = map[DocumentStatus]bool{
	DocumentStatusPaid:    true,
	DocumentStatusOverdue: true,
}

func transitionTable(docType DocumentType) map[DocumentStatus][]DocumentStatus {
	if docType == DocumentTypeQuote {
		return quoteTransitions
	}
	return invoiceTransitions
}

// InitialDocumentStatus returns the creation status for a type. A non-zero
// partial payment does not change the initial invoice status.
func InitialDocumentStatus(docType DocumentType) DocumentStatus {
	if docType == DocumentTypeQuote {
		return DocumentStatusDraft
	}
	return DocumentStatusUnpaid
}

// IsTerminalStatus reports whether no further transitions (and no edits) are
// allowed for a document of the given type in this status.
func IsTerminalStatus(docType DocumentType, status DocumentStatus) bool {
	allowed, ok := transitionTable(docType)[status]
	return ok && len(allowed) == 0
}

// IsValidStatus reports whether the status belongs to the type's domain.
func IsValidStatus(docType DocumentType, status DocumentStatus) bool {
	_, ok := transitionTable(docType)[status]
	return ok
}

// ValidateStatusTransition returns nil when from -> to is legal for the
// type. Idempotent re-application of Paid/Overdue is legal (no-op for the
// caller to detect via from == to). Everything else fails with an
// IllegalTransitionError naming the exact pair.
func ValidateStatusTransition(docType DocumentType, from DocumentStatus, to DocumentStatus) error {
	if from == to && idempotentStatuses[to] {
		return nil
	}
	for _, next := range transitionTable(docType)[from] {
		if next == to {
			return nil
		}
	}
	return &utils.IllegalTransitionError{
		DocumentType: string(docType),
		From:         string(from),
		To:           string(to),
	}
}
