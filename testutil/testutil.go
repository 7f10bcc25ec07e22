// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/helenatai/chemucl/db"
	"github.com/helenatai/chemucl/models"
)

// SetupTestDB creates a fresh SQLite database with the full schema in the
// test's temp dir. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "audit.db")
	conn, err := db.Open(db.SQLite, "file:"+path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// SeedLocation inserts a location into the directory tables
func SeedLocation(t *testing.T, conn *sql.DB, id, code, name string) models.Location {
	t.Helper()

	loc := models.Location{ID: id, QRCode: code, Name: name, Building: "Chemistry"}
	_, err := conn.Exec(`
		INSERT INTO location (id, qr_code, name, building)
		VALUES (?, ?, ?, ?)
	`, loc.ID, loc.QRCode, loc.Name, loc.Building)
	if err != nil {
		t.Fatalf("Failed to seed location: %v", err)
	}
	return loc
}

// SeedChemical inserts a chemical currently recorded at locationID
func SeedChemical(t *testing.T, conn *sql.DB, id, code, name, locationID string) models.Chemical {
	t.Helper()

	chem := models.Chemical{ID: id, QRCode: code, Name: name, CASNumber: "64-17-5", LocationID: locationID}
	_, err := conn.Exec(`
		INSERT INTO chemical (id, qr_code, name, cas_number, location_id)
		VALUES (?, ?, ?, ?, ?)
	`, chem.ID, chem.QRCode, chem.Name, chem.CASNumber, chem.LocationID)
	if err != nil {
		t.Fatalf("Failed to seed chemical: %v", err)
	}
	return chem
}

// MoveChemical changes a chemical's recorded location, as an inventory edit would
func MoveChemical(t *testing.T, conn *sql.DB, chemicalID, locationID string) {
	t.Helper()

	if _, err := conn.Exec(`UPDATE chemical SET location_id = ? WHERE id = ?`, locationID, chemicalID); err != nil {
		t.Fatalf("Failed to move chemical: %v", err)
	}
}

// Clock is a manually advanced time source
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start.UTC()}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
