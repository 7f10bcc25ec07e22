// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package directory

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/helenatai/chemucl/db"
	"github.com/helenatai/chemucl/models"
	"github.com/helenatai/chemucl/testutil"
)

func newSQLDirectory(t *testing.T) *SQLDirectory {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	testutil.SeedLocation(t, conn, "loc-1", "LOC-1", "Cold room")
	testutil.SeedLocation(t, conn, "loc-2", "LOC-2", "Acid cabinet")
	testutil.SeedChemical(t, conn, "chem-1", "CHEM-1", "Toluene", "loc-1")
	testutil.SeedChemical(t, conn, "chem-2", "CHEM-2", "Acetone", "loc-1")
	testutil.SeedChemical(t, conn, "chem-3", "CHEM-3", "Nitric acid", "loc-2")
	return NewSQLDirectory(conn, db.SQLite)
}

func TestSQLDirectory_Resolve(t *testing.T) {
	d := newSQLDirectory(t)
	ctx := t.Context()

	loc, err := d.ResolveLocation(ctx, " LOC-1\n")
	if err != nil {
		t.Fatal(err)
	}
	if loc.ID != "loc-1" || loc.Building != "Chemistry" {
		t.Errorf("Unexpected location: %+v", loc)
	}

	chem, err := d.ResolveChemical(ctx, "CHEM-3")
	if err != nil {
		t.Fatal(err)
	}
	if chem.ID != "chem-3" || chem.LocationID != "loc-2" || chem.CASNumber == "" {
		t.Errorf("Unexpected chemical: %+v", chem)
	}

	for _, code := range []string{"", "   ", "LOC-404"} {
		if _, err := d.ResolveLocation(ctx, code); !errors.Is(err, ErrNotFound) {
			t.Errorf("ResolveLocation(%q): expected ErrNotFound, got %v", code, err)
		}
	}
	if _, err := d.ResolveChemical(ctx, "LOC-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("A location code must not resolve as a chemical, got %v", err)
	}
	if _, err := d.Location(ctx, "loc-404"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSQLDirectory_Listings(t *testing.T) {
	d := newSQLDirectory(t)
	ctx := t.Context()

	locs, err := d.ListLocations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(locs) != 2 || locs[0].Name != "Acid cabinet" {
		t.Errorf("Expected locations ordered by name, got %+v", locs)
	}

	chems, err := d.ChemicalsAtLocation(ctx, "loc-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(chems) != 2 || chems[0].Name != "Acetone" || chems[1].Name != "Toluene" {
		t.Errorf("Expected [Acetone Toluene], got %+v", chems)
	}

	none, err := d.ChemicalsAtLocation(ctx, "loc-404")
	if err != nil {
		t.Fatal(err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", none)
	}
}

func newInventoryServer(t *testing.T) *httptest.Server {
	t.Helper()
	locations := map[string]models.Location{
		"loc-1": {ID: "loc-1", QRCode: "LOC-1", Name: "Cold room"},
	}
	chemicals := map[string]models.Chemical{
		"CHEM-1": {ID: "chem-1", QRCode: "CHEM-1", Name: "Toluene", LocationID: "loc-1"},
	}

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}
	notFound := func(w http.ResponseWriter) {
		writeJSON(w, http.StatusNotFound, apiError{Error: "Not Found", Message: "no such entity"})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /locations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Location{locations["loc-1"]})
	})
	mux.HandleFunc("GET /locations/by-code/{code}", func(w http.ResponseWriter, r *http.Request) {
		for _, l := range locations {
			if l.QRCode == r.PathValue("code") {
				writeJSON(w, http.StatusOK, l)
				return
			}
		}
		notFound(w)
	})
	mux.HandleFunc("GET /locations/{id}", func(w http.ResponseWriter, r *http.Request) {
		if l, ok := locations[r.PathValue("id")]; ok {
			writeJSON(w, http.StatusOK, l)
			return
		}
		notFound(w)
	})
	mux.HandleFunc("GET /locations/{id}/{sub}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("sub") != "chemicals" {
			notFound(w)
			return
		}
		if r.PathValue("id") == "boom" {
			writeJSON(w, http.StatusInternalServerError, apiError{Error: "Internal", Message: "inventory offline"})
			return
		}
		out := []models.Chemical{}
		for _, c := range chemicals {
			if c.LocationID == r.PathValue("id") {
				out = append(out, c)
			}
		}
		writeJSON(w, http.StatusOK, out)
	})
	mux.HandleFunc("GET /chemicals/by-code/{code}", func(w http.ResponseWriter, r *http.Request) {
		if c, ok := chemicals[r.PathValue("code")]; ok {
			writeJSON(w, http.StatusOK, c)
			return
		}
		notFound(w)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPDirectory(t *testing.T) {
	srv := newInventoryServer(t)
	d := NewHTTPDirectory(srv.URL+"/", 2*time.Second)
	ctx := t.Context()

	loc, err := d.ResolveLocation(ctx, " LOC-1 ")
	if err != nil {
		t.Fatal(err)
	}
	if loc.ID != "loc-1" || loc.Name != "Cold room" {
		t.Errorf("Unexpected location: %+v", loc)
	}

	if _, err := d.ResolveLocation(ctx, "LOC-9"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := d.ResolveChemical(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for empty code, got %v", err)
	}

	chem, err := d.ResolveChemical(ctx, "CHEM-1")
	if err != nil {
		t.Fatal(err)
	}
	if chem.LocationID != "loc-1" {
		t.Errorf("Unexpected chemical: %+v", chem)
	}

	byID, err := d.Location(ctx, "loc-1")
	if err != nil {
		t.Fatal(err)
	}
	if byID.QRCode != "LOC-1" {
		t.Errorf("Unexpected location: %+v", byID)
	}

	locs, err := d.ListLocations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(locs) != 1 {
		t.Errorf("Expected 1 location, got %d", len(locs))
	}

	chems, err := d.ChemicalsAtLocation(ctx, "loc-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(chems) != 1 || chems[0].ID != "chem-1" {
		t.Errorf("Unexpected chemicals: %+v", chems)
	}
}

func TestHTTPDirectory_ServerError(t *testing.T) {
	srv := newInventoryServer(t)
	d := NewHTTPDirectory(srv.URL, time.Second)

	_, err := d.ChemicalsAtLocation(t.Context(), "boom")
	if err == nil {
		t.Fatal("Expected an error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("A server failure must not look like an unknown code")
	}
}

func TestHTTPDirectory_Unreachable(t *testing.T) {
	srv := newInventoryServer(t)
	url := srv.URL
	srv.Close()

	d := NewHTTPDirectory(url, 200*time.Millisecond)
	_, err := d.ResolveLocation(t.Context(), "LOC-1")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Expected a transport error, got %v", err)
	}
}
