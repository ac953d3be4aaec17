package database

import (
	"context"
	"testing"
	"time"

	"vaultwars/internal/vw"
)

func TestBroadcaster_CloseEndsSubscriptions(t *testing.T) {
	b := newBroadcaster()
	ch := b.subscribe(context.Background(), vw.CollectionVaults)

	closed := make(chan struct{})
	go func() {
		b.close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("close() did not return; subscription watcher still running")
	}

	if _, ok := <-ch; ok {
		t.Error("subscriber channel still open after close()")
	}

	// Closing twice and subscribing afterwards are both harmless.
	b.close()
	if _, ok := <-b.subscribe(context.Background(), ""); ok {
		t.Error("subscribe() after close() returned an open channel")
	}
}

func TestBroadcaster_CancelRemovesSubscriber(t *testing.T) {
	b := newBroadcaster()
	ctx, cancel := context.WithCancel(context.Background())
	ch := b.subscribe(ctx, "")
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("received an event, want closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}

	b.mu.Lock()
	n := len(b.subs)
	b.mu.Unlock()
	if n != 0 {
		t.Errorf("len(subs) = %d after cancel, want 0", n)
	}
	b.close()
}
