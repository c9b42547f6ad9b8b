// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package status

import (
	"context"
	"sync"
	"time"

	"github.com/v-industries-lv/ausma-ai-documents/internal/api"
)

// DefaultInterval is used when the configured poll interval is zero.
const DefaultInterval = 500 * time.Millisecond

// Source is the slice of the REST API the poller needs.
type Source interface {
	GetServiceStatus(ctx context.Context) (*api.ServiceStatus, error)
}

// =============================================================================
// POLLER
// =============================================================================

// Poller periodically fetches the service status and hands each result to
// the observer. Fetch failures are delivered as a nil status so the
// observer can show the service as unreachable.
type Poller struct {
	source   Source
	interval time.Duration
	observe  func(*api.ServiceStatus)

	wg       sync.WaitGroup
	stop     chan struct{}
	reconfig chan time.Duration
	once     sync.Once
}

// NewPoller creates a poller. An interval of zero selects DefaultInterval.
func NewPoller(source Source, interval time.Duration, observe func(*api.ServiceStatus)) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		source:   source,
		interval: interval,
		observe:  observe,
		stop:     make(chan struct{}),
		reconfig: make(chan time.Duration, 1),
	}
}

// Start begins polling. The first fetch happens immediately, then once
// per interval until Stop is called.
func (p *Poller) Start() {
	p.wg.Add(1)
	go p.loop()
}

// Stop halts polling and waits for the in-flight fetch to finish.
// Safe to call more than once.
func (p *Poller) Stop() {
	p.once.Do(func() { close(p.stop) })
	p.wg.Wait()
}

// SetInterval changes the poll interval of a running poller. Zero and
// negative values are ignored.
func (p *Poller) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	select {
	case p.reconfig <- interval:
	default:
	}
}

func (p *Poller) loop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.fetch()
	for {
		select {
		case <-p.stop:
			return
		case interval := <-p.reconfig:
			p.interval = interval
			ticker.Reset(interval)
		case <-ticker.C:
			p.fetch()
		}
	}
}

func (p *Poller) fetch() {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval*4)
	defer cancel()

	status, err := p.source.GetServiceStatus(ctx)
	if err != nil {
		p.observe(nil)
		return
	}
	p.observe(status)
}
