package receipt

import (
	"bytes"
	"context"
	"fmt"

	"github.com/hostelhub/hostelhub-api/internal/pkg/storage"
)

// Issuer renders receipts and stores them.
type Issuer struct {
	store storage.Storage
}

func NewIssuer(store storage.Storage) *Issuer {
	return &Issuer{store: store}
}

// Issue renders d, stores it under receipts/<booking>/<number>.pdf and returns its URL.
func (i *Issuer) Issue(ctx context.Context, d Data) (string, error) {
	if d.Number == "" {
		d.Number = NewNumber(d.PaidAt)
	}

	pdf, err := Render(d)
	if err != nil {
		return "", err
	}

	key := Key(d.BookingID, d.Number)
	if err := i.store.Put(ctx, key, bytes.NewReader(pdf), "application/pdf"); err != nil {
		return "", fmt.Errorf("store receipt: %w", err)
	}
	return i.store.GetURL(key), nil
}

// Key is the storage key of a receipt.
func Key(bookingID, number string) string {
	return fmt.Sprintf("receipts/%s/%s.pdf", bookingID, number)
}
