// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package directory resolves scanned QR codes to locations and chemicals.
//
// SQLDirectory reads the location and chemical tables of the audit database.
// HTTPDirectory asks an external inventory service. Both return ErrNotFound
// for unknown codes and ids.
package directory
