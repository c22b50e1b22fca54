package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/anr091/project-kapita/internal/util"

	"go.uber.org/zap"
)

// Sequence kinds
const (
	KindProduct  = "product"
	KindStock    = "stock"
	KindArrival  = "arrival"
	KindShipment = "shipment"
	KindSupplier = "supplier"
	KindRetail   = "retail"
	// KindRole is reserved for the role records the admin gateway manages.
	// Nothing here mints role IDs yet; the kind keeps the R prefix from
	// colliding when that writer arrives.
	KindRole    = "role"
	KindCounter = "counter"
)

type sequenceFormat struct {
	prefix string
	width  int
}

var sequenceFormats = map[string]sequenceFormat{
	KindProduct:  {prefix: "PRD", width: 4},
	KindStock:    {prefix: "INV", width: 4},
	KindArrival:  {prefix: "ARIV", width: 5},
	KindShipment: {prefix: "SHP", width: 5},
	KindSupplier: {prefix: "SUPP", width: 4},
	KindRetail:   {prefix: "RET", width: 3},
	KindRole:     {prefix: "R", width: 3},
	KindCounter:  {prefix: "ITMCHRT", width: 9},
}

// SequenceStore is the storage capability the allocator needs.
type SequenceStore interface {
	IncrementSequence(ctx context.Context, kind string) (int64, bool, error)
	SeedSequence(ctx context.Context, kind string, lastValue int64) error
	LastIdentifier(ctx context.Context, kind string) (string, error)
}

// SequenceAllocator mints prefixed, zero-padded identifiers per record kind.
// Allocation is an atomic increment on a counter row, so concurrent callers
// of the same kind can never observe the same value. The counter is seeded
// once per kind from the highest identifier already on record.
type SequenceAllocator struct {
	store  SequenceStore
	logger *zap.Logger
}

// NewSequenceAllocator creates a new allocator
func NewSequenceAllocator(store SequenceStore) *SequenceAllocator {
	return &SequenceAllocator{
		store:  store,
		logger: util.GetLogger(),
	}
}

// NextID allocates the next identifier for a kind
func (a *SequenceAllocator) NextID(ctx context.Context, kind string) (string, error) {
	format, ok := sequenceFormats[kind]
	if !ok {
		return "", fmt.Errorf("unknown sequence kind: %s", kind)
	}

	value, found, err := a.store.IncrementSequence(ctx, kind)
	if err != nil {
		return "", fmt.Errorf("failed to increment sequence %s: %w", kind, err)
	}

	if !found {
		if err := a.seed(ctx, kind, format); err != nil {
			return "", err
		}
		value, found, err = a.store.IncrementSequence(ctx, kind)
		if err != nil {
			return "", fmt.Errorf("failed to increment sequence %s: %w", kind, err)
		}
		if !found {
			return "", fmt.Errorf("sequence %s missing after seeding", kind)
		}
	}

	return FormatID(kind, value), nil
}

// seed installs the counter row from the highest existing identifier. A
// malformed suffix is fatal for the kind: defaulting to zero would silently
// restart the series and mint duplicates.
func (a *SequenceAllocator) seed(ctx context.Context, kind string, format sequenceFormat) error {
	last, err := a.store.LastIdentifier(ctx, kind)
	if err != nil {
		return fmt.Errorf("failed to read last %s identifier: %w", kind, err)
	}

	var lastValue int64
	if last != "" {
		lastValue, err = ParseSuffix(kind, last)
		if err != nil {
			return err
		}
	}

	a.logger.Info("Seeding sequence",
		zap.String("kind", kind),
		zap.Int64("last_value", lastValue))

	if err := a.store.SeedSequence(ctx, kind, lastValue); err != nil {
		return fmt.Errorf("failed to seed sequence %s: %w", kind, err)
	}
	return nil
}

// FormatID renders a sequence value as the kind's prefixed, zero-padded
// identifier, e.g. FormatID(KindProduct, 1) == "PRD0001".
func FormatID(kind string, value int64) string {
	format := sequenceFormats[kind]
	return fmt.Sprintf("%s%0*d", format.prefix, format.width, value)
}

// ParseSuffix extracts the numeric suffix from an identifier of a kind.
func ParseSuffix(kind, id string) (int64, error) {
	format, ok := sequenceFormats[kind]
	if !ok {
		return 0, fmt.Errorf("unknown sequence kind: %s", kind)
	}

	suffix, found := strings.CutPrefix(id, format.prefix)
	if !found || suffix == "" {
		return 0, fmt.Errorf("%w: %s id %q lacks prefix %s", ErrSequenceMalformed, kind, id, format.prefix)
	}

	value, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%w: %s id %q has non-numeric suffix", ErrSequenceMalformed, kind, id)
	}
	return value, nil
}
