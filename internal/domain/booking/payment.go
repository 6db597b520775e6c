package booking

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentInput is a payment the operator is about to submit.
type PaymentInput struct {
	Amount         decimal.Decimal
	Method         PaymentMethod
	TransactionRef string
	Notes          string
}

// ValidatePayment applies the pre-submission guard: 0 < amount <= amountDue,
// and electronic methods carry a transaction reference.
func ValidatePayment(in PaymentInput, amountDue decimal.Decimal) error {
	fields := map[string]string{}

	switch {
	case !in.Amount.IsPositive():
		fields["amount"] = "Amount must be greater than zero"
	case in.Amount.GreaterThan(amountDue):
		fields["amount"] = "Amount cannot exceed the amount due (" + amountDue.StringFixed(2) + ")"
	}

	if !in.Method.Valid() {
		fields["payment_method"] = "Invalid payment method"
	} else if in.Method.IsElectronic() && strings.TrimSpace(in.TransactionRef) == "" {
		fields["transaction_ref"] = "Transaction reference is required for " + string(in.Method) + " payments"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
