package models

import (
	"context"

	"github.com/rahim5123rk-sys/trade-flow-app-sub000/config"
	"github.com/rahim5123rk-sys/trade-flow-app-sub000/utils"
)

// maxAllocationAttempts bounds the optimistic retry loop so two admins
// hammering the same counter cannot spin forever. Exhaustion surfaces as an
// AllocationConflictError and the caller retries the whole creation.
const maxAllocationAttempts = 5

func sequenceColumn(docType DocumentType) string {
	if docType == DocumentTypeQuote {
		return "next_quote_number"
	}
	return "next_invoice_number"
}

// NextDocumentNumber issues the next document number for (company, type).
// The increment is a compare-and-swap against the company row: each attempt
// re-reads the counter and only commits the increment if the counter is
// unchanged, so two simultaneous creations can never receive the same
// number. Numbers are strictly increasing and never reused; a number burned
// by a later rollback shows up as a gap, never as a duplicate.
func NextDocumentNumber(ctx context.Context, companyId string, docType DocumentType) (int64, error) {
	db := config.GetDB()
	column := sequenceColumn(docType)

	for attempt := 1; attempt <= maxAllocationAttempts; attempt++ {
		var current int64
		if err := db.WithContext(ctx).Model(&Company{}).
			Where("id = ?", companyId).
			Select(column).
			Scan(&current).Error; err != nil {
			return 0, err
		}
		if current <= 0 {
			return 0, utils.ErrorRecordNotFound
		}

		result := db.WithContext(ctx).Model(&Company{}).
			Where("id = ? AND "+column+" = ?", companyId, current).
			Update(column, current+1)
		if result.Error != nil {
			return 0, result.Error
		}
		if result.RowsAffected == 1 {
			return current, nil
		}
		// lost the race; take a fresh read and try again
	}

	return 0, &utils.AllocationConflictError{
		CompanyId:    companyId,
		DocumentType: string(docType),
		Attempts:     maxAllocationAttempts,
	}
}
