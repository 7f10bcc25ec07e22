// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit_test

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helenatai/chemucl/audit"
	"github.com/helenatai/chemucl/lock"
	"github.com/helenatai/chemucl/models"
	"github.com/helenatai/chemucl/testutil"
)

func lockers() map[string]func(t *testing.T) lock.Locker {
	return map[string]func(t *testing.T) lock.Locker{
		"keyed": func(*testing.T) lock.Locker { return lock.NewKeyedMutex() },
		"redis": func(t *testing.T) lock.Locker {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { client.Close() })
			return lock.NewRedisLocker(client, 10*time.Second, nil)
		},
	}
}

func TestConcurrentCompletionsKeepCounters(t *testing.T) {
	for name, newLocker := range lockers() {
		t.Run(name, func(t *testing.T) {
			conn := testutil.SetupTestDB(t)
			const n = 12
			for i := 0; i < n; i++ {
				loc := fmt.Sprintf("loc-%02d", i)
				testutil.SeedLocation(t, conn, loc, fmt.Sprintf("LOC-%02d", i), fmt.Sprintf("Room %02d", i))
				testutil.SeedChemical(t, conn, "chem-"+loc, fmt.Sprintf("CHEM-%02d", i), "Reagent "+loc, loc)
			}
			e := newEnvOn(t, conn, newLocker(t))
			ctx := t.Context()

			detail := e.start(t)
			require.Len(t, detail.Sessions, n)
			for _, s := range detail.Sessions {
				_, err := e.svc.ScanLocation(ctx, detail.Round.ID, s.LocationCode)
				require.NoError(t, err)
			}

			var ok, conflict atomic.Int32
			var wg sync.WaitGroup
			for _, s := range detail.Sessions {
				for attempt := 0; attempt < 3; attempt++ {
					wg.Add(1)
					go func(id string) {
						defer wg.Done()
						_, err := e.svc.CompleteAuditSession(ctx, id)
						switch {
						case err == nil:
							ok.Add(1)
						case errors.Is(err, audit.ErrInvalidStateTransition):
							conflict.Add(1)
						default:
							t.Errorf("unexpected error: %v", err)
						}
					}(s.ID)
				}
			}
			wg.Wait()

			assert.Equal(t, int32(n), ok.Load(), "each audit completes exactly once")
			assert.Equal(t, int32(2*n), conflict.Load())

			r, err := e.svc.GetRound(ctx, detail.Round.ID)
			require.NoError(t, err)
			assert.Equal(t, 0, r.Round.PendingCount)
			assert.Equal(t, n, r.Round.FinishedCount)
			assert.Equal(t, models.RoundCompleted, r.Round.Status)
		})
	}
}

func TestConcurrentScansOfOneAudit(t *testing.T) {
	for name, newLocker := range lockers() {
		t.Run(name, func(t *testing.T) {
			conn := testutil.SetupTestDB(t)
			testutil.SeedLocation(t, conn, "loc-1", "LOC-1", "Lab A")
			codes := make([]string, 6)
			for i := range codes {
				codes[i] = fmt.Sprintf("CHEM-%d", i)
				testutil.SeedChemical(t, conn, fmt.Sprintf("chem-%d", i), codes[i], fmt.Sprintf("Reagent %d", i), "loc-1")
			}
			e := newEnvOn(t, conn, newLocker(t))
			ctx := t.Context()

			detail := e.start(t)
			sess := detail.Sessions[0]
			_, err := e.svc.ScanLocation(ctx, detail.Round.ID, "LOC-1")
			require.NoError(t, err)

			var wg sync.WaitGroup
			var failures atomic.Int32
			for _, code := range append(codes, codes...) {
				wg.Add(1)
				go func(code string) {
					defer wg.Done()
					if _, err := e.svc.ScanChemical(ctx, sess.ID, code); err != nil {
						failures.Add(1)
					}
				}(code)
			}
			wg.Wait()
			require.Zero(t, failures.Load())

			for code, st := range recordStatuses(t, e, sess.ID) {
				assert.Equal(t, models.RecordFound, st, code)
			}
		})
	}
}
