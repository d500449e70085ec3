package compaction

import (
	"log"
	"sync"
	"time"

	"github.com/brevity-labs/hyve/registry"
	"github.com/brevity-labs/hyve/store"
	"github.com/google/uuid"
)

// Timer runs Compact across every namespace in a registry at a fixed
// interval, grounded on the teacher's job-manager goroutine lifecycle:
// a ticker, a stop channel, and a WaitGroup so Stop blocks until the
// background goroutine has actually exited. Unlike a Node interval
// timer, a bare Go ticker goroutine never keeps the process alive on
// its own — os.Exit or main returning tears it down regardless, so
// Stop exists for orderly shutdown, not to unref a handle (spec §4.7,
// §9 "Timer lifecycle").
type Timer struct {
	reg      *registry.Registry
	interval time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// NewTimer builds a Timer that compacts every namespace in reg every
// interval. It does not start running until Start is called.
func NewTimer(reg *registry.Registry, interval time.Duration) *Timer {
	return &Timer{reg: reg, interval: interval, stopChan: make(chan struct{})}
}

// Start launches the background compaction loop. Callers must not call
// Start more than once per Timer.
func (t *Timer) Start() {
	t.wg.Add(1)
	go t.run()
}

// Stop signals the background loop to exit and waits for it to do so.
// Safe to call multiple times.
func (t *Timer) Stop() {
	t.once.Do(func() { close(t.stopChan) })
	t.wg.Wait()
}

func (t *Timer) run() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.compactAll()
		case <-t.stopChan:
			return
		}
	}
}

func (t *Timer) compactAll() {
	runID := uuid.New().String()
	t.reg.ForEach(func(name string, ns *store.NamespaceStore) {
		log.Printf("compaction run %s: compacting namespace %q", runID, name)
		Compact(ns)
	})
}
