package models

import (
	"fmt"
	"strings"

	"github.com/rahim5123rk-sys/trade-flow-app-sub000/utils"
	"github.com/shopspring/decimal"
)

// LineItemInput is one billable row of a draft. Amounts are decimals end to
// end; binary floats never touch money in this package.
type LineItemInput struct {
	Description string          `json:"description" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VatPercent  decimal.Decimal `json:"vat_percent"`
}

// FinancialSummary is the derived money block of a document. It is a cache:
// always recomputable from items + discount + partial payment alone. It is
// also usable standalone for on-screen running totals before a document
// exists.
type FinancialSummary struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TotalVat        decimal.Decimal `json:"total_vat"`
	Total           decimal.Decimal `json:"total"`
	PartialPayment  decimal.Decimal `json:"partial_payment"`
	BalanceDue      decimal.Decimal `json:"balance_due"`

	// Overpayment is advisory only: the excess when a recorded partial
	// payment exceeds the total. Display concern, never an error.
	Overpayment decimal.Decimal `json:"overpayment"`
}

var decimalOneHundred = decimal.NewFromInt(100)

func validateLineItem(index int, item LineItemInput) error {
	field := func(name string) string { return fmt.Sprintf("items[%d].%s", index, name) }

	if strings.TrimSpace(item.Description) == "" {
		return utils.NewValidationError(field("description"), "description is required")
	}
	if item.Quantity.IsNegative() {
		return utils.NewValidationError(field("quantity"), "quantity must not be negative")
	}
	if item.UnitPrice.IsNegative() {
		return utils.NewValidationError(field("unit_price"), "unit price must not be negative")
	}
	if item.VatPercent.IsNegative() || item.VatPercent.GreaterThan(decimalOneHundred) {
		return utils.NewValidationError(field("vat_percent"), "vat percent must be between 0 and 100")
	}
	return nil
}

// ComputeFinancialSummary turns line items + document discount + partial
// payment into a FinancialSummary. Pure: no I/O, no side effects.
//
// Discount is distributed proportionally across lines before VAT, so VAT is
// charged on the post-discount value (standard UK invoicing practice).
// Rounding is half-up to 2 decimal places and happens at each summary figure,
// not per line, to avoid compounding error. An empty item list is valid and
// yields all zeros; whether an empty document may be finalized is the
// caller's decision.
func ComputeFinancialSummary(items []LineItemInput, discountPercent decimal.Decimal, partialPayment decimal.Decimal) (*FinancialSummary, error) {

	if discountPercent.IsNegative() || discountPercent.GreaterThan(decimalOneHundred) {
		return nil, utils.NewValidationError("discount_percent", "discount percent must be between 0 and 100")
	}
	if partialPayment.IsNegative() {
		return nil, utils.NewValidationError("partial_payment", "partial payment must not be negative")
	}
	for i, item := range items {
		if err := validateLineItem(i, item); err != nil {
			return nil, err
		}
	}

	// Exact per-line nets; single rounding at the summation step.
	var subtotal decimal.Decimal
	lineNets := make([]decimal.Decimal, len(items))
	for i, item := range items {
		lineNets[i] = item.Quantity.Mul(item.UnitPrice)
		subtotal = subtotal.Add(lineNets[i])
	}
	subtotal = subtotal.Round(2)

	discountAmount := subtotal.Mul(discountPercent).Div(decimalOneHundred).Round(2)
	// discountedNet is an exact complement of discountAmount, so
	// discountAmount + discountedNet == subtotal with no rounding leak.
	discountedNet := subtotal.Sub(discountAmount)

	var totalVat decimal.Decimal
	if subtotal.IsPositive() {
		for i, item := range items {
			scaledLineNet := lineNets[i].Mul(discountedNet).Div(subtotal)
			totalVat = totalVat.Add(scaledLineNet.Mul(item.VatPercent).Div(decimalOneHundred))
		}
	}
	totalVat = totalVat.Round(2)

	total := discountedNet.Add(totalVat).Round(2)

	balanceDue := total.Sub(partialPayment)
	overpayment := decimal.Zero
	if balanceDue.IsNegative() {
		overpayment = balanceDue.Neg()
		balanceDue = decimal.Zero
	}

	return &FinancialSummary{
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		TotalVat:        totalVat,
		Total:           total,
		PartialPayment:  partialPayment,
		BalanceDue:      balanceDue,
		Overpayment:     overpayment,
	}, nil
}
