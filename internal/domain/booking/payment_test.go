package booking

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidatePaymentAmountBounds(t *testing.T) {
	due := decimal.NewFromInt(600)

	for _, amount := range []string{"0", "-5", "600.01"} {
		err := ValidatePayment(PaymentInput{Amount: decimal.RequireFromString(amount), Method: MethodCash}, due)
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Fields["amount"] == "" {
			t.Fatalf("amount %s: expected amount error, got %v", amount, err)
		}
	}

	if err := ValidatePayment(PaymentInput{Amount: due, Method: MethodCash}, due); err != nil {
		t.Fatalf("paying the full amount due must pass, got %v", err)
	}
}

func TestValidatePaymentElectronicNeedsReference(t *testing.T) {
	due := decimal.NewFromInt(100)
	for _, m := range []PaymentMethod{MethodBankTransfer, MethodMobileMoney, MethodCard} {
		err := ValidatePayment(PaymentInput{Amount: decimal.NewFromInt(10), Method: m, TransactionRef: "   "}, due)
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Fields["transaction_ref"] == "" {
			t.Fatalf("%s: expected transaction_ref error, got %v", m, err)
		}
		if err := ValidatePayment(PaymentInput{Amount: decimal.NewFromInt(10), Method: m, TransactionRef: "TX-1"}, due); err != nil {
			t.Fatalf("%s with reference: unexpected error %v", m, err)
		}
	}

	for _, m := range []PaymentMethod{MethodCash, MethodCheque} {
		if err := ValidatePayment(PaymentInput{Amount: decimal.NewFromInt(10), Method: m}, due); err != nil {
			t.Fatalf("%s: reference must be optional, got %v", m, err)
		}
	}
}

func TestValidatePaymentUnknownMethod(t *testing.T) {
	err := ValidatePayment(PaymentInput{Amount: decimal.NewFromInt(1), Method: "CRYPTO"}, decimal.NewFromInt(5))
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["payment_method"] == "" {
		t.Fatalf("expected payment_method error, got %v", err)
	}
}
