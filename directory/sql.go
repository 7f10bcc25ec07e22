// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/helenatai/chemucl/db"
	"github.com/helenatai/chemucl/models"
)

// SQLDirectory reads the location and chemical tables of the shared database.
type SQLDirectory struct {
	conn    *sql.DB
	dialect db.Dialect
}

var _ Resolver = (*SQLDirectory)(nil)

func NewSQLDirectory(conn *sql.DB, dialect db.Dialect) *SQLDirectory {
	return &SQLDirectory{conn: conn, dialect: dialect}
}

func (d *SQLDirectory) ResolveLocation(ctx context.Context, code string) (*models.Location, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrNotFound
	}
	return d.location(ctx, "qr_code = $1", code)
}

func (d *SQLDirectory) Location(ctx context.Context, id string) (*models.Location, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return d.location(ctx, "id = $1", id)
}

func (d *SQLDirectory) location(ctx context.Context, where string, arg string) (*models.Location, error) {
	var loc models.Location
	var building sql.NullString
	err := d.conn.QueryRowContext(ctx, d.dialect.Rebind(`
		SELECT id, qr_code, name, building FROM location WHERE `+where,
	), arg).Scan(&loc.ID, &loc.QRCode, &loc.Name, &building)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query location: %w", err)
	}
	loc.Building = building.String
	return &loc, nil
}

func (d *SQLDirectory) ListLocations(ctx context.Context) ([]models.Location, error) {
	rows, err := d.conn.QueryContext(ctx, `SELECT id, qr_code, name, building FROM location ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	locations := []models.Location{}
	for rows.Next() {
		var loc models.Location
		var building sql.NullString
		if err := rows.Scan(&loc.ID, &loc.QRCode, &loc.Name, &building); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		loc.Building = building.String
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func (d *SQLDirectory) ResolveChemical(ctx context.Context, code string) (*models.Chemical, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrNotFound
	}

	var chem models.Chemical
	var cas, locationID sql.NullString
	err := d.conn.QueryRowContext(ctx, d.dialect.Rebind(`
		SELECT id, qr_code, name, cas_number, location_id FROM chemical WHERE qr_code = $1
	`), code).Scan(&chem.ID, &chem.QRCode, &chem.Name, &cas, &locationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query chemical: %w", err)
	}
	chem.CASNumber = cas.String
	chem.LocationID = locationID.String
	return &chem, nil
}

func (d *SQLDirectory) ChemicalsAtLocation(ctx context.Context, locationID string) ([]models.Chemical, error) {
	rows, err := d.conn.QueryContext(ctx, d.dialect.Rebind(`
		SELECT id, qr_code, name, cas_number, location_id
		FROM chemical
		WHERE location_id = $1
		ORDER BY name, id
	`), locationID)
	if err != nil {
		return nil, fmt.Errorf("query chemicals: %w", err)
	}
	defer rows.Close()

	chemicals := []models.Chemical{}
	for rows.Next() {
		var chem models.Chemical
		var cas, loc sql.NullString
		if err := rows.Scan(&chem.ID, &chem.QRCode, &chem.Name, &cas, &loc); err != nil {
			return nil, fmt.Errorf("scan chemical: %w", err)
		}
		chem.CASNumber = cas.String
		chem.LocationID = loc.String
		chemicals = append(chemicals, chem)
	}
	return chemicals, rows.Err()
}
