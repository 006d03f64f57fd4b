package ids

import (
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
)

func TestCreateULIDIsParseable(t *testing.T) {
	id := CreateULID()
	if len(id) != 26 {
		t.Fatalf("ULID length = %d, want 26", len(id))
	}
	if _, err := ulid.ParseStrict(id); err != nil {
		t.Fatalf("ParseStrict(%q) failed: %v", id, err)
	}
}

func TestCreateULIDSequentialOrdering(t *testing.T) {
	const total = 100
	ids := make([]string, total)
	for i := 0; i < total; i++ {
		ids[i] = CreateULID()
	}

	for i := 1; i < total; i++ {
		if !(ids[i-1] < ids[i]) {
			t.Fatalf("ids not strictly increasing at %d: %q >= %q", i, ids[i-1], ids[i])
		}
	}
}

func TestConsumerGroupIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := ConsumerGroupID()
		if !strings.HasPrefix(id, "kafkabench-") {
			t.Fatalf("unexpected prefix: %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate consumer group id: %q", id)
		}
		seen[id] = true
	}
}
