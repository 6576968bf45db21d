package policies

import (
	"context"
	"io"
)

// ReceiptStore keeps payment receipt evidence (bank transfer slips, POS
// printouts) and returns a URL stored on the payment record.
type ReceiptStore interface {
	Store(ctx context.Context, key string, content io.Reader, contentType string) (url string, err error)
}
