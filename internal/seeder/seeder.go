package seeder

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/vibita-lite/internal/repository/orderstate"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Seeder bulk-loads processed flags, e.g. when moving a shop over from
// another tool.
type Seeder struct {
	store  orderstate.Store
	logger *zap.Logger
}

// New constructs a Seeder writing through the configured state store.
func New(store orderstate.Store, logger *zap.Logger) *Seeder {
	return &Seeder{store: store, logger: logger}
}

// States reads "orderId,processed" records from r and upserts each for
// shop. A header row starting with "orderId" is skipped. It stops at the
// first invalid record and returns how many rows were written before it.
func (s *Seeder) States(ctx context.Context, shop string, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	written := 0
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return written, fmt.Errorf("line %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(record[0], "orderId") {
			continue
		}

		orderID := strings.TrimSpace(record[0])
		if orderID == "" {
			return written, fmt.Errorf("line %d: empty order id", line)
		}
		processed, err := strconv.ParseBool(strings.TrimSpace(record[1]))
		if err != nil {
			return written, fmt.Errorf("line %d: processed: %w", line, err)
		}

		if err := s.store.Upsert(ctx, shop, orderID, processed); err != nil {
			return written, fmt.Errorf("line %d: %w", line, err)
		}
		written++
	}

	s.logger.Info("seeded order states", zap.String("shop", shop), zap.Int("count", written))
	return written, nil
}
