package models

import (
	"context"
	"fmt"

	"github.com/rahim5123rk-sys/trade-flow-app-sub000/config"
	"github.com/xuri/excelize/v2"
)

var documentExportHeaders = []string{
	"Type", "Number", "Reference", "Status", "Document Date", "Due Date",
	"Customer", "Customer Company", "Subtotal", "Discount %", "Discount",
	"VAT", "Total", "Paid", "Balance Due",
}

// ExportDocumentsXLSX renders the company's documents (after filtering) into
// an xlsx workbook and returns the file bytes. Rows come straight from the
// stored money block; nothing is recomputed at export time.
func ExportDocumentsXLSX(ctx context.Context, filter *DocumentFilter) ([]byte, error) {
	logger := config.GetLogger()

	documents, err := GetDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			config.LogError(logger, "document", "ExportDocumentsXLSX", "close workbook", nil, err)
		}
	}()

	sheet := "Documents"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for col, header := range documentExportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for row, doc := range documents {
		dueDate := ""
		if doc.DueDate != nil {
			dueDate = doc.DueDate.Format("2006-01-02")
		}
		values := []interface{}{
			string(doc.Type),
			doc.Number,
			doc.Reference,
			string(doc.CurrentStatus),
			doc.DocumentDate.Format("2006-01-02"),
			dueDate,
			doc.CustomerSnapshot.Name,
			doc.CustomerSnapshot.CompanyName,
			doc.Subtotal.StringFixed(2),
			doc.DiscountPercent.StringFixed(2),
			doc.DiscountAmount.StringFixed(2),
			doc.TotalVat.StringFixed(2),
			doc.TotalAmount.StringFixed(2),
			doc.PartialPayment.StringFixed(2),
			doc.BalanceDue.StringFixed(2),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buffer.Bytes(), nil
}
