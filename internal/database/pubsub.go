package database

import (
	"context"
	"sync"

	"vaultwars/internal/vw"
)

// subscriberBuffer is the number of change events a slow subscriber may lag
// behind before further events to it are dropped.
const subscriberBuffer = 64

type subscriber struct {
	collection string
	ch         chan vw.ChangeEvent
}

// broadcaster fans committed changes out to subscribers.
type broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
	done   chan struct{}
	wg     sync.WaitGroup
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]*subscriber), done: make(chan struct{})}
}

// subscribe registers a subscriber for collection ("" for every collection).
// The channel is closed when ctx is done or the broadcaster is closed.
func (b *broadcaster) subscribe(ctx context.Context, collection string) <-chan vw.ChangeEvent {
	sub := &subscriber{collection: collection, ch: make(chan vw.ChangeEvent, subscriberBuffer)}

	b.mu.Lock()
	if b.subs == nil {
		b.mu.Unlock()
		close(sub.ch)
		return sub.ch
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()
		select {
		case <-ctx.Done():
			b.remove(id)
		case <-b.done:
		}
	}()
	return sub.ch
}

func (b *broadcaster) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(sub.ch)
	}
}

// publish delivers events without blocking the committing writer.
func (b *broadcaster) publish(events []vw.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ev := range events {
		for _, sub := range b.subs {
			if sub.collection != "" && sub.collection != ev.Collection {
				continue
			}
			select {
			case sub.ch <- ev:
			default:
				// Subscriber fell behind; it can re-read the document.
			}
		}
	}
}

// close closes every subscriber channel, rejects new subscriptions and waits
// for the per-subscriber watchers to exit.
func (b *broadcaster) close() {
	b.mu.Lock()
	if b.subs == nil {
		b.mu.Unlock()
		return
	}
	close(b.done)
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
	b.subs = nil
	b.mu.Unlock()

	b.wg.Wait()
}
