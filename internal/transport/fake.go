package transport

import (
	"sync"

	"voicedoc/internal/capture"
)

// FakeOutputContext replaces the audio backend in tests. The test advances
// playback by calling Pull on the device.
type FakeOutputContext struct {
	mu  sync.Mutex
	dev *FakeOutput
}

func (f *FakeOutputContext) NewPlayback(_ capture.Config, fill func(out []byte)) (Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dev = &FakeOutput{fill: fill}
	return f.dev, nil
}

func (f *FakeOutputContext) Close() {}

// Device returns the most recently opened playback device.
func (f *FakeOutputContext) Device() *FakeOutput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dev
}

type FakeOutput struct {
	mu      sync.Mutex
	fill    func(out []byte)
	started bool
	closed  bool
}

func (o *FakeOutput) Start() error {
	o.mu.Lock()
	o.started = true
	o.mu.Unlock()
	return nil
}

func (o *FakeOutput) Stop() {
	o.mu.Lock()
	o.started = false
	o.mu.Unlock()
}

func (o *FakeOutput) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
}

// Pull asks the controller for n bytes, as the real device callback would,
// and returns them.
func (o *FakeOutput) Pull(n int) []byte {
	out := make([]byte, n)
	o.fill(out)
	return out
}

func (o *FakeOutput) Started() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.started
}
