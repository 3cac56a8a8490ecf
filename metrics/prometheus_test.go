package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"go_photodna/photodna"
)

// counterValue returns the value of the first sample of a gathered metric family whose
// labels include every pair in labels.
func counterValue(t *testing.T, p *Prometheus, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := p.Registry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for k, v := range labels {
				found := false
				for _, lp := range m.GetLabel() {
					if lp.GetName() == k && lp.GetValue() == v {
						found = true
					}
				}
				if !found {
					continue next
				}
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			if m.GetHistogram() != nil {
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return 0
}

func TestPrometheus_ObserveOperation(t *testing.T) {
	p := NewPrometheus()

	p.ObserveOperation(photodna.OperationEvent{Operation: photodna.OpHash, Duration: time.Millisecond})
	p.ObserveOperation(photodna.OperationEvent{Operation: photodna.OpHash, Err: photodna.ErrImageTooSmall})
	p.ObserveOperation(photodna.OperationEvent{Operation: photodna.OpBorderDetection, BorderFound: true})

	if got := counterValue(t, p, "photodna_hash_duration_seconds", map[string]string{"operation": "hash"}); got != 2 {
		t.Errorf("hash duration samples = %v, want 2", got)
	}
	if got := counterValue(t, p, "photodna_hash_errors_total", map[string]string{"operation": "hash", "kind": "ImageTooSmall"}); got != 1 {
		t.Errorf("errors = %v, want 1", got)
	}
	if got := counterValue(t, p, "photodna_border_detected_total", nil); got != 1 {
		t.Errorf("borders = %v, want 1", got)
	}
	if got := counterValue(t, p, "photodna_images_total", map[string]string{"pixel_format": "rgb"}); got != 3 {
		t.Errorf("images = %v, want 3", got)
	}
}

func TestServer_ServesMetrics(t *testing.T) {
	p := NewPrometheus()
	p.ObserveOperation(photodna.OperationEvent{Operation: photodna.OpHash})

	srv, err := Listen("127.0.0.1:0", p.Handler())
	if err != nil {
		t.Fatalf("Listen() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	resp, err := http.Get("http://" + srv.Addr() + MetricsPath)
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "photodna_hash_duration_seconds") {
		t.Error("response should contain the duration histogram")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServer_Shutdown(t *testing.T) {
	srv, err := Listen("127.0.0.1:0", NewPrometheus().Handler())
	if err != nil {
		t.Fatalf("Listen() error: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background()) }()

	// Wait until the server answers before shutting it down.
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get("http://" + srv.Addr() + MetricsPath)
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never answered: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil after Shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
}
