package gumbi

import (
	"log"
	"sync"
	"time"

	"github.com/rkjdid/util"
)

// Snapshot is the board's health at a given time.
type Snapshot struct {
	Time    time.Time
	State   State
	Mode    Mode
	Latency util.Duration
	Error   string `json:",omitempty"`
}

// Watcher pings the board every PollRate, resetting it when it got faulted.
type Watcher struct {
	board  *Board
	mu     sync.Locker
	cfg    *WatcherConfig
	stopCh chan struct{}
	wg     sync.WaitGroup

	snapMu sync.RWMutex
	last   Snapshot
}

type WatcherConfig struct {
	PollRate util.Duration
}

var DefaultWatcherConfig = WatcherConfig{
	PollRate: util.Duration(time.Second * 2),
}

// NewWatcher creates a watcher for b. Every board access happens under mu,
// which must be the lock other users of b hold.
func NewWatcher(b *Board, mu sync.Locker, cfg *WatcherConfig) *Watcher {
	if cfg == nil {
		cfg = &DefaultWatcherConfig
	}
	w := &Watcher{
		board: b,
		mu:    mu,
		cfg:   cfg,
	}
	w.last = Snapshot{Time: time.Now(), State: b.State(), Mode: b.Mode()}
	return w
}

// Snapshot returns the result of the last poll.
func (w *Watcher) Snapshot() Snapshot {
	w.snapMu.RLock()
	defer w.snapMu.RUnlock()
	return w.last
}

// Poll pings the board once and records the result.
func (w *Watcher) Poll() Snapshot {
	w.mu.Lock()
	t0 := time.Now()
	err := Ping(w.board)
	sn := Snapshot{
		Time:    t0,
		Latency: util.Duration(time.Since(t0)),
	}
	if err != nil {
		sn.Error = err.Error()
		log.Printf("ping failed: %s (state: %s)", err, w.board.State())
		if w.board.State() == Faulted {
			log.Println("resetting board")
			if err = w.board.Reset(); err != nil {
				log.Println("in board.Reset():", err)
			}
		}
	}
	sn.State = w.board.State()
	sn.Mode = w.board.Mode()
	w.mu.Unlock()

	w.snapMu.Lock()
	w.last = sn
	w.snapMu.Unlock()
	return sn
}

// Stop notifies Watch() to stop, and waits until it returns.
func (w *Watcher) Stop() {
	if w.stopCh == nil {
		return
	}
	log.Println("stopping board watcher")
	close(w.stopCh)
	w.wg.Wait()
	w.stopCh = nil
}

// Watch starts polling in a new goroutine. A zero PollRate disables it.
func (w *Watcher) Watch() {
	if w.cfg.PollRate <= 0 {
		return
	}
	w.stopCh = make(chan struct{})
	w.wg.Add(1)
	go func(stop <-chan struct{}) {
		defer w.wg.Done()
		for {
			select {
			case <-time.After(time.Duration(w.cfg.PollRate)):
			case <-stop:
				return
			}
			w.Poll()
		}
	}(w.stopCh)
}
