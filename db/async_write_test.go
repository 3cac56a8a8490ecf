package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go_photodna/photodna"
)

func TestAsyncWriterPersistsThroughRepository(t *testing.T) {
	ctx := context.Background()
	d := openTestDB(t)
	repo := NewRepository(d, nil)
	writer := NewRepositoryWriter(repo, nil)
	repo = NewRepository(d, writer)
	writer.Start()

	for i := 0; i < 10; i++ {
		rec := NewHashRecord("img.png", "digest", 64, 64, photodna.PixelFormatRGB, testHash(t, byte(i)))
		if err := repo.InsertAsync(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	if err := writer.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}
	if writer.Written() != 10 || writer.Failed() != 0 {
		t.Errorf("written=%d failed=%d", writer.Written(), writer.Failed())
	}
	if n, _ := repo.CountRecords(ctx); n != 10 {
		t.Errorf("CountRecords() = %d, want 10", n)
	}

	// After shutdown InsertAsync falls back to a direct insert.
	if err := repo.InsertAsync(ctx, NewHashRecord("late.png", "d", 64, 64, photodna.PixelFormatRGB, testHash(t, 99))); err != nil {
		t.Fatal(err)
	}
	if n, _ := repo.CountRecords(ctx); n != 11 {
		t.Errorf("CountRecords() = %d, want 11", n)
	}
}

func TestAsyncWriterReportsErrors(t *testing.T) {
	boom := errors.New("disk full")
	var mu sync.Mutex
	var failed []*HashRecord

	writer := NewAsyncWriter(
		func(context.Context, *HashRecord) error { return boom },
		func(rec *HashRecord, err error) {
			mu.Lock()
			defer mu.Unlock()
			if errors.Is(err, boom) {
				failed = append(failed, rec)
			}
		},
	)
	writer.Start()
	writer.Write(&HashRecord{SourcePath: "a"})
	writer.Write(&HashRecord{SourcePath: "b"})

	if !writer.StopWithTimeout(time.Second) {
		t.Fatal("writer did not drain")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(failed) != 2 || writer.Failed() != 2 {
		t.Errorf("failed = %d records, counter %d", len(failed), writer.Failed())
	}
}

func TestAsyncWriterQueueFullAndStopped(t *testing.T) {
	release := make(chan struct{})
	writer := NewAsyncWriterWithCapacity(func(context.Context, *HashRecord) error {
		<-release
		return nil
	}, nil, 1)

	// Not started: the single slot fills and the next write is rejected.
	if !writer.Write(&HashRecord{}) {
		t.Fatal("first write should be queued")
	}
	if writer.Write(&HashRecord{}) {
		t.Error("write to a full queue should be rejected")
	}
	if writer.Pending() != 1 {
		t.Errorf("Pending() = %d", writer.Pending())
	}

	close(release)
	if err := writer.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if writer.Written() != 1 {
		t.Errorf("Written() = %d, want 1 (drained inline)", writer.Written())
	}
	if writer.Write(&HashRecord{}) {
		t.Error("write after Shutdown should be rejected")
	}
	if writer.IsStarted() {
		t.Error("IsStarted() after Shutdown")
	}
}

func TestAsyncWriterShutdownTimeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	writer := NewAsyncWriter(func(context.Context, *HashRecord) error {
		<-block
		return nil
	}, nil)
	writer.Start()
	writer.Write(&HashRecord{})
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := writer.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() = %v, want deadline exceeded", err)
	}
}
