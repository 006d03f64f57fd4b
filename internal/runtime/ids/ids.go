package ids

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// CreateULID returns a time-sortable ULID encoded as a 26-character string.
func CreateULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	return id.String()
}

// ConsumerGroupID returns a fresh, random consumer group id. Every consumer
// run gets its own group so it starts from a clean offset position instead of
// resuming another run's progress.
func ConsumerGroupID() string {
	return "kafkabench-" + CreateULID()
}
