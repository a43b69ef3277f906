package collector

import (
	"sync"
	"time"

	"github.com/festy23/github_reporting/internal/activity/model"
)

const subscriberBuffer = 8

// Progress describes how far a running pass has got.
type Progress struct {
	RepositoriesTotal int    `json:"repositories_total"`
	RepositoriesDone  int    `json:"repositories_done"`
	Repository        string `json:"repository,omitempty"`
	Page              int    `json:"page"`
	Items             int    `json:"items"`
}

// Status is a snapshot of the collection state of one entity kind.
type Status struct {
	Kind      model.Kind `json:"kind"`
	Enabled   bool       `json:"enabled"`
	Running   bool       `json:"running"`
	RunID     string     `json:"run_id,omitempty"`
	Progress  Progress   `json:"progress"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

// broadcaster holds the current status of one kind and fans changes out to subscribers.
// A subscriber that falls behind loses its oldest pending snapshots, never the latest.
type broadcaster struct {
	mu      sync.Mutex
	current Status
	subs    map[int]chan Status
	nextID  int
}

func newBroadcaster(kind model.Kind) *broadcaster {
	return &broadcaster{
		current: Status{Kind: kind},
		subs:    make(map[int]chan Status),
	}
}

func (b *broadcaster) snapshot() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// update applies fn to the current status and publishes the result.
func (b *broadcaster) update(fn func(*Status)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	fn(&b.current)
	for _, ch := range b.subs {
		send(ch, b.current)
	}
}

// subscribe returns a channel that first receives the current status and then every change.
// The channel is closed by cancel.
func (b *broadcaster) subscribe() (<-chan Status, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Status, subscriberBuffer)
	ch <- b.current
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (b *broadcaster) subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// send never blocks: when ch is full the oldest snapshot is dropped.
// Callers hold the broadcaster lock, so they are the only sender.
func send(ch chan Status, s Status) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- s
}
