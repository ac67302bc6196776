package capture

import "sync"

// FakeContext feeds canned PCM to the session, replacing the microphone in
// tests. Chunks are delivered in order when Feed is called.
type FakeContext struct {
	// FailNewCapture makes NewCapture fail, simulating a declined permission.
	FailNewCapture error
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake", Name: "Fake Microphone"}}, nil
}

func (f *FakeContext) NewCapture(_ Config, cb DataCallback) (Device, error) {
	if f.FailNewCapture != nil {
		return nil, f.FailNewCapture
	}
	return &FakeDevice{cb: cb}, nil
}

func (f *FakeContext) Close() {}

type FakeDevice struct {
	mu      sync.Mutex
	cb      DataCallback
	started bool
	closed  bool
}

func (d *FakeDevice) Start() error {
	d.mu.Lock()
	d.started = true
	d.mu.Unlock()
	return nil
}

func (d *FakeDevice) Stop() {
	d.mu.Lock()
	d.started = false
	d.mu.Unlock()
}

func (d *FakeDevice) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}

// Feed delivers one chunk as if the device produced it.
func (d *FakeDevice) Feed(data []byte) {
	d.mu.Lock()
	started, cb := d.started, d.cb
	d.mu.Unlock()
	if started && cb != nil {
		cb(data, uint32(len(data)/2))
	}
}

// Closed reports whether the session released the device.
func (d *FakeDevice) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
