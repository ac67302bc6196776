// Package transport implements the client playback engine: play, pause,
// seek, mute and continuous progress reporting over one audio resource.
package transport

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"voicedoc/internal/capture"
)

// Progress is the continuous playback signal. Percent is clamped to [0,100].
type Progress struct {
	Position time.Duration
	Duration time.Duration
	Percent  float64
}

// Output is an open audio output handle.
type Output interface {
	Start() error
	Stop()
	Close()
}

// OutputContext abstracts the playback backend. The device pulls PCM by
// calling fill with an output buffer to populate.
type OutputContext interface {
	NewPlayback(config capture.Config, fill func(out []byte)) (Output, error)
	Close()
}

// Controller wraps a single audio resource, local or fetched, and drives it
// through an Output. Only s16le PCM (WAV) resources are directly playable;
// resources whose duration is unknown have progress reporting suspended, not
// errored, until the metadata arrives.
type Controller struct {
	out OutputContext

	mu       sync.Mutex
	dev      Output
	pcm      []byte
	config   capture.Config
	offset   int // bytes consumed, frame-aligned
	playing  bool
	muted    bool
	durKnown bool

	subs   map[int]chan Progress
	nextID int
}

func NewController(out OutputContext) *Controller {
	return &Controller{out: out, subs: make(map[int]chan Progress)}
}

// Load installs a resource. WAV payloads are parsed immediately; anything
// else stays metadata-less until SetPCM supplies decoded audio.
func (c *Controller) Load(res *capture.Resource) error {
	if res == nil || len(res.Data) == 0 {
		return fmt.Errorf("transport: no audio resource")
	}

	pcm, config, err := parseWAV(res.Data)

	c.mu.Lock()
	dev := c.detachLocked()
	c.offset = 0
	if err != nil {
		// Not a WAV container. Duration is unknown until decoded audio is
		// provided; progress reporting is suspended meanwhile.
		c.pcm = nil
		c.durKnown = false
	} else {
		c.pcm = pcm
		c.config = config
		c.durKnown = true
	}
	c.mu.Unlock()

	releaseOutput(dev)
	return nil
}

// SetPCM supplies decoded audio for a resource loaded without metadata,
// resuming progress reporting.
func (c *Controller) SetPCM(pcm []byte, config capture.Config) {
	c.mu.Lock()
	dev := c.detachLocked()
	c.pcm = pcm
	c.config = config
	c.offset = 0
	c.durKnown = true
	c.mu.Unlock()

	releaseOutput(dev)
}

// Play starts or resumes playback. Playing an ended resource restarts it.
func (c *Controller) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.durKnown {
		return fmt.Errorf("transport: resource metadata not loaded")
	}
	if c.playing {
		return nil
	}
	if c.offset >= len(c.pcm) {
		c.offset = 0
	}
	if c.dev == nil {
		dev, err := c.out.NewPlayback(c.config, c.fill)
		if err != nil {
			return fmt.Errorf("transport: open playback device: %w", err)
		}
		c.dev = dev
	}
	if err := c.dev.Start(); err != nil {
		return fmt.Errorf("transport: start playback: %w", err)
	}
	c.playing = true
	return nil
}

// Pause halts playback, keeping the position and the open device. The device
// is stopped after c.mu is dropped: Stop blocks until the in-flight pull
// callback returns, and fill takes c.mu.
func (c *Controller) Pause() {
	c.mu.Lock()
	if !c.playing {
		c.mu.Unlock()
		return
	}
	c.playing = false
	dev := c.dev
	c.mu.Unlock()

	if dev != nil {
		dev.Stop()
	}
}

// Seek maps fraction in [0,1] linearly onto the total duration. Out-of-range
// fractions clamp to the ends.
func (c *Controller) Seek(fraction float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.durKnown {
		return fmt.Errorf("transport: resource metadata not loaded")
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	align := int(2 * c.config.Channels)
	offset := int(fraction * float64(len(c.pcm)))
	c.offset = offset - offset%align
	c.publishLocked()
	return nil
}

// SetMuted silences output without pausing; position keeps advancing.
func (c *Controller) SetMuted(muted bool) {
	c.mu.Lock()
	c.muted = muted
	c.mu.Unlock()
}

// Progress reports the current signal. ok is false while the resource's
// duration is unknown.
func (c *Controller) Progress() (Progress, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.durKnown {
		return Progress{}, false
	}
	return c.progressLocked(), true
}

// Playing reports whether playback is advancing.
func (c *Controller) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Subscribe attaches a consumer to the progress stream. Events arrive in
// order until cancel runs or the controller closes.
func (c *Controller) Subscribe() (<-chan Progress, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	ch := make(chan Progress, 64)
	c.subs[id] = ch
	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
}

// Close stops playback, releases the device and detaches all subscribers.
func (c *Controller) Close() {
	c.mu.Lock()
	dev := c.detachLocked()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
	c.mu.Unlock()

	releaseOutput(dev)
}

// fill is the device pull callback: it copies the next PCM block into out,
// zero-filling when muted (position still advances) and past the end.
// Reaching the end flips the controller to paused; the device itself is
// stopped lazily since a device cannot be stopped from its own callback.
func (c *Controller) fill(out []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range out {
		out[i] = 0
	}
	if !c.playing {
		return
	}

	remain := len(c.pcm) - c.offset
	take := len(out)
	if take > remain {
		take = remain
	}
	if take > 0 && !c.muted {
		copy(out, c.pcm[c.offset:c.offset+take])
	}
	c.offset += take

	if c.offset >= len(c.pcm) {
		c.playing = false
	}
	c.publishLocked()
}

func (c *Controller) progressLocked() Progress {
	dur := capture.PCMDuration(len(c.pcm), c.config.SampleRate, c.config.Channels)
	pos := capture.PCMDuration(c.offset, c.config.SampleRate, c.config.Channels)
	var percent float64
	if dur > 0 {
		percent = float64(pos) / float64(dur) * 100
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return Progress{Position: pos, Duration: dur, Percent: percent}
}

func (c *Controller) publishLocked() {
	p := c.progressLocked()
	for _, ch := range c.subs {
		select {
		case ch <- p:
		default:
		}
	}
}

// detachLocked takes ownership of the device; the caller releases it via
// releaseOutput after dropping c.mu.
func (c *Controller) detachLocked() Output {
	c.playing = false
	dev := c.dev
	c.dev = nil
	return dev
}

func releaseOutput(dev Output) {
	if dev != nil {
		dev.Stop()
		dev.Close()
	}
}

// FormatTime renders seconds as MM:SS, zero-padded, truncating fractions.
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// parseWAV extracts s16le PCM and its format from a RIFF/WAVE payload.
func parseWAV(data []byte) ([]byte, capture.Config, error) {
	if len(data) < 44 || string(data[:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, capture.Config{}, fmt.Errorf("transport: not a WAV payload")
	}
	if binary.LittleEndian.Uint16(data[20:22]) != 1 || binary.LittleEndian.Uint16(data[34:36]) != 16 {
		return nil, capture.Config{}, fmt.Errorf("transport: only 16-bit PCM WAV is playable")
	}
	config := capture.Config{
		SampleRate: binary.LittleEndian.Uint32(data[24:28]),
		Channels:   uint32(binary.LittleEndian.Uint16(data[22:24])),
	}
	size := int(binary.LittleEndian.Uint32(data[40:44]))
	pcm := data[44:]
	if size < len(pcm) {
		pcm = pcm[:size]
	}
	return pcm, config, nil
}
