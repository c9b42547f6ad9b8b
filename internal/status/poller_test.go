// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package status

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v-industries-lv/ausma-ai-documents/internal/api"
)

type fakeSource struct {
	mu     sync.Mutex
	status api.ServiceStatus
	err    error
	calls  int
}

func (f *fakeSource) GetServiceStatus(context.Context) (*api.ServiceStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	return &status, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestPoller_DeliversStatus(t *testing.T) {
	source := &fakeSource{status: api.ServiceStatus{Status: "scanning", KBName: "Docs"}}

	results := make(chan *api.ServiceStatus, 16)
	p := NewPoller(source, 10*time.Millisecond, func(s *api.ServiceStatus) {
		select {
		case results <- s:
		default:
		}
	})
	p.Start()
	defer p.Stop()

	select {
	case got := <-results:
		require.NotNil(t, got)
		assert.Equal(t, "scanning", got.Status)
	case <-time.After(time.Second):
		t.Fatal("no status delivered")
	}
}

func TestPoller_DeliversNilOnFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("service down")}

	results := make(chan *api.ServiceStatus, 16)
	p := NewPoller(source, 10*time.Millisecond, func(s *api.ServiceStatus) {
		select {
		case results <- s:
		default:
		}
	})
	p.Start()
	defer p.Stop()

	select {
	case got := <-results:
		assert.Nil(t, got)
	case <-time.After(time.Second):
		t.Fatal("no result delivered")
	}
}

func TestPoller_StopHaltsPolling(t *testing.T) {
	source := &fakeSource{}
	p := NewPoller(source, 5*time.Millisecond, func(*api.ServiceStatus) {})
	p.Start()

	time.Sleep(30 * time.Millisecond)
	p.Stop()
	after := source.callCount()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, source.callCount(), "no fetches after Stop")

	// Stop is idempotent.
	p.Stop()
}

func TestPoller_SetIntervalWhileRunning(t *testing.T) {
	source := &fakeSource{}
	p := NewPoller(source, time.Hour, func(*api.ServiceStatus) {})
	p.Start()
	defer p.Stop()

	// With an hour-long interval only the immediate first fetch happens;
	// tightening the interval makes further fetches arrive.
	p.SetInterval(5 * time.Millisecond)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if source.callCount() >= 3 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("interval change not applied, %d fetches", source.callCount())
}

func TestPoller_ZeroIntervalUsesDefault(t *testing.T) {
	p := NewPoller(&fakeSource{}, 0, func(*api.ServiceStatus) {})
	assert.Equal(t, DefaultInterval, p.interval)
}
