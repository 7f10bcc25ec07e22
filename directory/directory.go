// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package directory

import (
	"context"
	"errors"
	"strings"

	"github.com/helenatai/chemucl/models"
)

// ErrNotFound means a code or id matches no known entity. Scanning the wrong
// label is an expected outcome, not a system failure.
var ErrNotFound = errors.New("not found in inventory")

// Resolver looks up inventory entities. Implementations hold no audit state.
type Resolver interface {
	ResolveLocation(ctx context.Context, code string) (*models.Location, error)
	ResolveChemical(ctx context.Context, code string) (*models.Chemical, error)
	Location(ctx context.Context, id string) (*models.Location, error)
	ListLocations(ctx context.Context) ([]models.Location, error)
	ChemicalsAtLocation(ctx context.Context, locationID string) ([]models.Chemical, error)
}

// NormalizeCode strips whitespace a scanner may add around a QR payload.
func NormalizeCode(code string) string {
	return strings.TrimSpace(code)
}
