// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists audit rounds, audits and records.

Writes run inside WithTx; the callback must use only the Tx it is given:

	err := st.WithTx(ctx, func(tx *store.Tx) error {
		sess, err := tx.GetSession(ctx, id, true)
		...
		return tx.UpdateSession(ctx, sess)
	})

Reads that need no transaction go through the Store methods of the same name.

Passing lock=true to a getter adds FOR UPDATE on postgres. SQLite runs on a
single connection, so each transaction already excludes every other.

Missing rows surface as ErrNotFound and unique constraint violations as
ErrDuplicate; both are wrapped with the failing operation. A clash on
round_number is reported as ErrRoundNumberTaken, which also matches
ErrDuplicate.
*/
package store
