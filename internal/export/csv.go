// Package export renders order pulls as downloadable CSV documents.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/Additional-Code/vibita-lite/internal/entity"
)

// ContentType is the media type of Encode output.
const ContentType = "text/csv; charset=utf-8"

// Header lists the fixed column names.
var Header = []string{"Order", "Date", "Email", "Total", "Currency", "Fulfillment"}

// Filename names an export taken at now, e.g. orders-2024-01-15.csv.
func Filename(now time.Time) string {
	return fmt.Sprintf("orders-%s.csv", now.UTC().Format(time.DateOnly))
}

// Write writes the header and one row per order to w. Rows are joined by
// "\n" with no terminator after the last one. Fields holding a comma,
// quote or line break are quoted.
func Write(w io.Writer, orders []entity.Order) error {
	body, err := Encode(orders)
	if err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// Encode returns the whole document.
func Encode(orders []entity.Order) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(Header); err != nil {
		return nil, err
	}
	for _, order := range orders {
		if err := cw.Write(Row(order)); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Row renders one order.
func Row(order entity.Order) []string {
	amount, currency := "0", ""
	if order.Total != nil {
		if order.Total.Amount != "" {
			amount = order.Total.Amount
		}
		currency = order.Total.CurrencyCode
	}
	return []string{
		order.Name,
		order.CreatedAt.UTC().Format(time.DateOnly),
		order.Email,
		amount,
		currency,
		string(order.FulfillmentStatus),
	}
}
