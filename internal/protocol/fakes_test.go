package protocol

import (
	"context"
	"errors"
	"sync"
	"time"

	"panel-link/internal/protocol/termios"
)

type fakeTransport struct {
	mu       sync.Mutex
	captured []byte
	capErr   error
	openErr  error
	writes   [][]byte
	writeErr error
	opened   bool
	closed   bool
	window   time.Duration
}

func (f *fakeTransport) Open(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return f.openErr
	}
	f.opened = true
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) Write(ctx context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, append([]byte(nil), data...))
	return nil
}

func (f *fakeTransport) Capture(ctx context.Context, window time.Duration) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.window = window
	return f.captured, f.capErr
}

func dialerFor(transports map[string]*fakeTransport) Dialer {
	return func(path string) (Transport, error) {
		t, ok := transports[path]
		if !ok {
			return nil, errors.New("no such device")
		}
		return t, nil
	}
}

type recordingConfigurator struct {
	paths []string
	cfgs  []termios.LineConfig
	err   error
}

func (r *recordingConfigurator) Configure(ctx context.Context, path string, cfg termios.LineConfig) error {
	r.paths = append(r.paths, path)
	r.cfgs = append(r.cfgs, cfg)
	return r.err
}
