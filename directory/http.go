// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package directory

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/helenatai/chemucl/models"
)

// HTTPDirectory resolves codes against an external inventory service.
type HTTPDirectory struct {
	client *resty.Client
}

var _ Resolver = (*HTTPDirectory)(nil)

// apiError is the error body returned by the inventory service.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewHTTPDirectory builds a resty-backed resolver rooted at baseURL.
func NewHTTPDirectory(baseURL string, timeout time.Duration) *HTTPDirectory {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	return &HTTPDirectory{client: client}
}

func (d *HTTPDirectory) get(ctx context.Context, path string, params map[string]string, result any) error {
	apiErr := new(apiError)
	resp, err := d.client.R().
		SetContext(ctx).
		SetPathParams(params).
		SetResult(result).
		SetError(apiErr).
		Get(path)
	if err != nil {
		return fmt.Errorf("inventory request %s: %w", path, err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("inventory api error: status=%d, message=%s", resp.StatusCode(), apiErr.Message)
	}
	return nil
}

func (d *HTTPDirectory) ResolveLocation(ctx context.Context, code string) (*models.Location, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrNotFound
	}
	loc := new(models.Location)
	if err := d.get(ctx, "/locations/by-code/{code}", map[string]string{"code": code}, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

func (d *HTTPDirectory) ResolveChemical(ctx context.Context, code string) (*models.Chemical, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrNotFound
	}
	chem := new(models.Chemical)
	if err := d.get(ctx, "/chemicals/by-code/{code}", map[string]string{"code": code}, chem); err != nil {
		return nil, err
	}
	return chem, nil
}

func (d *HTTPDirectory) Location(ctx context.Context, id string) (*models.Location, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	loc := new(models.Location)
	if err := d.get(ctx, "/locations/{id}", map[string]string{"id": id}, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

func (d *HTTPDirectory) ListLocations(ctx context.Context) ([]models.Location, error) {
	var locations []models.Location
	if err := d.get(ctx, "/locations", nil, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

func (d *HTTPDirectory) ChemicalsAtLocation(ctx context.Context, locationID string) ([]models.Chemical, error) {
	var chemicals []models.Chemical
	if err := d.get(ctx, "/locations/{id}/chemicals", map[string]string{"id": locationID}, &chemicals); err != nil {
		return nil, err
	}
	return chemicals, nil
}
