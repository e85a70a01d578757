// ABOUTME: Time-sortable identifiers for conversation records
// ABOUTME: Matches the ULID format the SQLite store assigns
package supabase

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

func newRecordID(at time.Time) string {
	return ulid.MustNew(ulid.Timestamp(at), ulid.Monotonic(rand.Reader, 0)).String()
}
