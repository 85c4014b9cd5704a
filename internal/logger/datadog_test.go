package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
)

func TestNewDataDogWriterRequiresAPIKey(t *testing.T) {
	_, err := NewDataDogWriter(DataDog{Enabled: true})

	if !errors.Is(err, ErrDataDogAPIKeyIsEmpty) {
		t.Fatalf("expected ErrDataDogAPIKeyIsEmpty, got: %v", err)
	}
}

func TestDataDogWriterQueuesCopies(t *testing.T) {
	w := newDataDogWriter(DataDog{ServiceName: "test"}, nil)

	buf := []byte(`{"level":"info"}`)

	n, err := w.Write(buf)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if n != len(buf) {
		t.Fatalf("expected %d bytes reported, got %d", len(buf), n)
	}

	// mutate the caller's buffer, the queued entry must not change
	buf[2] = 'X'

	select {
	case entry := <-w.entries:
		if string(entry) != `{"level":"info"}` {
			t.Fatalf("queued entry shares the caller's buffer: %s", entry)
		}
	default:
		t.Fatal("expected one queued entry")
	}
}

func TestDataDogWriterDropsWhenQueueFull(t *testing.T) {
	w := newDataDogWriter(DataDog{ServiceName: "test"}, nil)
	w.entries = make(chan []byte, 1)

	if _, err := w.Write([]byte("first")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	// the queue is full now, this entry is dropped but Write must not block
	done := make(chan struct{})
	go func() {
		_, _ = w.Write([]byte("second"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Write blocked on a full queue")
	}

	if got := string(<-w.entries); got != "first" {
		t.Fatalf("expected the first entry to survive, got: %s", got)
	}
}

func TestDataDogWriterLogItem(t *testing.T) {
	w := newDataDogWriter(DataDog{ServiceName: "insights"}, nil)

	item := w.logItem([]byte(`{"msg":"hi"}`))

	if item.Message != `{"msg":"hi"}` {
		t.Fatalf("unexpected message: %s", item.Message)
	}

	if item.GetDdsource() != dataDogSource {
		t.Fatalf("unexpected source: %s", item.GetDdsource())
	}

	if item.GetService() != "insights" {
		t.Fatalf("unexpected service: %s", item.GetService())
	}

	if item.GetDdtags() != "service:insights" {
		t.Fatalf("unexpected tags: %s", item.GetDdtags())
	}
}

func TestDataDogWriterFlushesFullBatches(t *testing.T) {
	received := make(chan int, 4)

	w := newDataDogWriter(DataDog{ServiceName: "test"}, func(_ context.Context, items []datadogV2.HTTPLogItem) error {
		received <- len(items)

		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go w.run(ctx)

	for i := 0; i < dataDogMaxBatch; i++ {
		if _, err := w.Write([]byte(`{"level":"info"}`)); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	select {
	case got := <-received:
		if got != dataDogMaxBatch {
			t.Fatalf("expected a batch of %d entries, got %d", dataDogMaxBatch, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("full batch was not flushed")
	}
}

func TestDataDogWriterSubmitTimeout(t *testing.T) {
	var sawDeadline bool

	w := newDataDogWriter(DataDog{ServiceName: "test", Timeout: time.Minute}, func(ctx context.Context, _ []datadogV2.HTTPLogItem) error {
		_, sawDeadline = ctx.Deadline()

		return errors.New("intake unreachable")
	})

	// an error from the intake is reported, not returned
	w.flush(context.Background(), []datadogV2.HTTPLogItem{w.logItem([]byte("x"))})

	if !sawDeadline {
		t.Fatal("expected the submit context to carry a deadline")
	}
}
