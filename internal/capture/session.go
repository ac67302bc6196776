package capture

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"voicedoc/internal/apperr"
)

// State is the session's lifecycle position.
type State int

const (
	Idle State = iota
	Recording
	Ready
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Resource is the assembled audio payload a Ready session holds.
type Resource struct {
	Data        []byte
	ContentType string
	// Duration is known for recorded audio; zero means the resource's
	// metadata has not loaded yet (file uploads).
	Duration time.Duration
}

// EventKind distinguishes session events on the subscription stream.
type EventKind int

const (
	// EventChunk is emitted for each PCM chunk, in arrival order.
	EventChunk EventKind = iota
	// EventTick is emitted once per second while recording.
	EventTick
)

type Event struct {
	Kind    EventKind
	Elapsed int // seconds, set on EventTick
	Size    int // chunk size in bytes, set on EventChunk
}

// Session is the capture state machine: Idle -> Recording -> Ready, with
// loadFromFile jumping straight to Ready and Reset returning to Idle.
// Sessions are driven by device events and never persisted; the resource is
// discarded on Reset or handed to the document service on save.
type Session struct {
	audio  Context
	config Config
	tick   time.Duration

	mu       sync.Mutex
	state    State
	device   Device
	chunks   [][]byte
	resource *Resource
	elapsed  int
	stopTick chan struct{}

	subs   map[int]chan Event
	nextID int
}

func NewSession(audio Context) *Session {
	return &Session{
		audio:  audio,
		config: DefaultConfig(),
		tick:   time.Second,
		subs:   make(map[int]chan Event),
	}
}

// State reports the current lifecycle position.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Elapsed reports whole seconds spent recording, for display only.
func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// Subscribe attaches a consumer to the session's event stream. Events are
// delivered in order until the cancel function runs or the session resets;
// no event is delivered after either.
func (s *Session) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan Event, 64)
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
}

// publish delivers an event to all subscribers. Callers hold s.mu, which is
// also what Subscribe/Reset take before closing a channel, so a send can
// never race a close. Slow consumers drop events rather than block capture.
func (s *Session) publish(e Event) {
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Start begins recording. Requires Idle; a second Start while recording is
// rejected, not queued. The device is opened and started without holding
// s.mu: driver calls can block on their own callback machinery.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return fmt.Errorf("capture: cannot start recording in %s state", s.state)
	}
	s.state = Recording
	s.chunks = nil
	s.resource = nil
	s.elapsed = 0
	s.mu.Unlock()

	dev, err := s.audio.NewCapture(s.config, s.onChunk)
	if err == nil {
		if startErr := dev.Start(); startErr != nil {
			dev.Close()
			err = apperr.PermissionDenied("could not start audio input").WithCause(startErr)
		}
	}

	s.mu.Lock()
	if err != nil {
		if s.state == Recording {
			s.state = Idle
		}
		s.mu.Unlock()
		return err
	}
	if s.state != Recording {
		// Stop or Reset won the race while the device was opening.
		s.mu.Unlock()
		releaseDevice(dev)
		return nil
	}
	s.device = dev
	s.stopTick = make(chan struct{})
	go s.runTicker(s.stopTick)
	s.mu.Unlock()
	return nil
}

// onChunk buffers arriving PCM in arrival order.
func (s *Session) onChunk(data []byte, _ uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Recording {
		return
	}
	chunk := make([]byte, len(data))
	copy(chunk, data)
	s.chunks = append(s.chunks, chunk)
	s.publish(Event{Kind: EventChunk, Size: len(chunk)})
}

func (s *Session) runTicker(stop chan struct{}) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.state == Recording {
				s.elapsed++
				s.publish(Event{Kind: EventTick, Elapsed: s.elapsed})
			}
			s.mu.Unlock()
		}
	}
}

// Stop assembles the buffered chunks, in order, into one WAV resource and
// moves to Ready. Calling Stop while Idle is a no-op. The device is released
// after s.mu is dropped: its Stop blocks until the in-flight data callback
// returns, and that callback takes s.mu.
func (s *Session) Stop() error {
	s.mu.Lock()
	switch s.state {
	case Idle:
		s.mu.Unlock()
		return nil
	case Ready:
		s.mu.Unlock()
		return fmt.Errorf("capture: cannot stop recording in %s state", s.state)
	}

	dev := s.detachLocked()

	pcm := bytes.Join(s.chunks, nil)
	s.chunks = nil
	s.resource = &Resource{
		Data:        EncodeWAV(pcm, s.config.SampleRate, s.config.Channels),
		ContentType: "audio/wav",
		Duration:    PCMDuration(len(pcm), s.config.SampleRate, s.config.Channels),
	}
	s.state = Ready
	s.mu.Unlock()

	releaseDevice(dev)
	return nil
}

// LoadFile wraps the given bytes as the audio resource, discarding any prior
// one. Requires Idle or Ready. An empty byte stream is UNSUPPORTED_FORMAT.
func (s *Session) LoadFile(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Recording {
		return fmt.Errorf("capture: cannot load a file while recording")
	}
	if len(data) == 0 {
		return apperr.UnsupportedFormat("audio file is empty")
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	s.resource = &Resource{
		Data:        buf,
		ContentType: sniffContentType(buf),
	}
	s.state = Ready
	return nil
}

// Resource returns the assembled audio resource, or nil unless Ready.
func (s *Session) Resource() *Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Ready {
		return nil
	}
	return s.resource
}

// Reset returns to Idle, discarding the resource and the elapsed counter.
// All subscribers are detached; no event is delivered after Reset.
func (s *Session) Reset() {
	s.mu.Lock()
	dev := s.detachLocked()
	s.state = Idle
	s.chunks = nil
	s.resource = nil
	s.elapsed = 0
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.mu.Unlock()

	releaseDevice(dev)
}

// detachLocked takes ownership of the device and stops the ticker. The
// caller releases the device via releaseDevice after dropping s.mu.
func (s *Session) detachLocked() Device {
	dev := s.device
	s.device = nil
	if s.stopTick != nil {
		close(s.stopTick)
		s.stopTick = nil
	}
	return dev
}

func releaseDevice(dev Device) {
	if dev != nil {
		dev.Stop()
		dev.Close()
	}
}

func sniffContentType(data []byte) string {
	switch {
	case len(data) >= 4 && string(data[:4]) == "RIFF":
		return "audio/wav"
	case len(data) >= 3 && string(data[:3]) == "ID3":
		return "audio/mpeg"
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return "audio/mpeg"
	default:
		return "application/octet-stream"
	}
}
