// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package lock provides per-key mutual exclusion for audit sessions.

Scans, pauses and completions of the same session must not interleave, while
different sessions proceed independently. Callers take the session's key
before opening a transaction:

	unlock, err := locker.Lock(ctx, lock.SessionKey(sessionID))
	if err != nil {
		return err
	}
	defer unlock()

KeyedMutex serializes goroutines of one process. RedisLocker uses SET NX with
a per-holder token and TTL so several service instances can share sessions.
*/
package lock
