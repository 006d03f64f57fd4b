package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObservePublished(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)
	if err := m.Register(); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	m.ObservePublished("bench.Test.evt_scalars")
	m.ObservePublished("bench.Test.evt_scalars")

	got := testutil.ToFloat64(m.publishedTotal.WithLabelValues("bench.Test.evt_scalars"))
	if got != 2 {
		t.Errorf("published counter = %v, want 2", got)
	}
}

func TestObserveConsumed(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)
	if err := m.Register(); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	m.ObserveConsumed("t", 0.005)
	m.ObserveConsumed("t", 0.010)

	if got := testutil.ToFloat64(m.consumedTotal.WithLabelValues("t")); got != 2 {
		t.Errorf("consumed counter = %v, want 2", got)
	}
	if n := testutil.CollectAndCount(m.delaySeconds); n != 1 {
		t.Errorf("delay histogram series = %d, want 1", n)
	}
}

func TestRegisterTwiceIsNoop(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)
	if err := m.Register(); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := m.Register(); err != nil {
		t.Errorf("second Register failed: %v", err)
	}
}
