package transport

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"voicedoc/internal/capture"
)

// oneSecondWAV is 16 kHz mono s16le with a recognizable ramp.
func oneSecondWAV() (*capture.Resource, []byte) {
	pcm := make([]byte, 32000)
	for i := range pcm {
		pcm[i] = byte(i)
	}
	return &capture.Resource{
		Data:        capture.EncodeWAV(pcm, 16000, 1),
		ContentType: "audio/wav",
		Duration:    time.Second,
	}, pcm
}

func loadedController(t *testing.T) (*Controller, *FakeOutputContext, []byte) {
	t.Helper()
	out := &FakeOutputContext{}
	c := NewController(out)
	res, pcm := oneSecondWAV()
	if err := c.Load(res); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return c, out, pcm
}

func TestFormatTime(t *testing.T) {
	for _, tt := range []struct {
		seconds float64
		want    string
	}{
		{65, "01:05"},
		{5, "00:05"},
		{0, "00:00"},
		{59.9, "00:59"}, // truncated, not rounded
		{600, "10:00"},
		{-3, "00:00"},
	} {
		if got := FormatTime(tt.seconds); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestPlayDeliversPCMInOrder(t *testing.T) {
	c, out, pcm := loadedController(t)
	if err := c.Play(); err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	dev := out.Device()
	if dev == nil || !dev.Started() {
		t.Fatal("playback device not started")
	}

	got := dev.Pull(1000)
	if !bytes.Equal(got, pcm[:1000]) {
		t.Error("first pull did not return the leading PCM block")
	}
	got = dev.Pull(1000)
	if !bytes.Equal(got, pcm[1000:2000]) {
		t.Error("second pull did not continue where the first left off")
	}
}

func TestProgressMonotonicAndBounded(t *testing.T) {
	c, out, _ := loadedController(t)
	events, cancel := c.Subscribe()
	defer cancel()

	if err := c.Play(); err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	dev := out.Device()
	for i := 0; i < 40; i++ {
		dev.Pull(1000)
	}

	last := -1.0
	count := 0
	for {
		select {
		case p := <-events:
			if p.Percent < last {
				t.Fatalf("progress went backwards: %v after %v", p.Percent, last)
			}
			if p.Percent < 0 || p.Percent > 100 {
				t.Fatalf("percent out of range: %v", p.Percent)
			}
			last = p.Percent
			count++
		default:
			if count == 0 {
				t.Fatal("no progress events delivered")
			}
			if last != 100 {
				t.Errorf("final percent = %v, want 100", last)
			}
			if c.Playing() {
				t.Error("controller must pause at end of resource")
			}
			return
		}
	}
}

func TestPauseFreezesPosition(t *testing.T) {
	c, out, _ := loadedController(t)
	c.Play()
	dev := out.Device()
	dev.Pull(8000)

	c.Pause()
	before, _ := c.Progress()
	got := dev.Pull(1000)
	for _, b := range got {
		if b != 0 {
			t.Fatal("paused controller must emit silence")
		}
	}
	after, _ := c.Progress()
	if after.Position != before.Position {
		t.Errorf("position advanced while paused: %v -> %v", before.Position, after.Position)
	}
}

// waitingOutput mirrors the real driver contract: Stop and Close return only
// after any in-flight pull callback has returned.
type waitingOutput struct {
	fill     func(out []byte)
	mu       sync.Mutex
	started  bool
	inFlight int
}

func (o *waitingOutput) Start() error {
	o.mu.Lock()
	o.started = true
	o.mu.Unlock()
	return nil
}

func (o *waitingOutput) Stop() {
	o.mu.Lock()
	o.started = false
	o.mu.Unlock()
	o.waitCallbacks()
}

func (o *waitingOutput) Close() {
	o.waitCallbacks()
}

func (o *waitingOutput) waitCallbacks() {
	for {
		o.mu.Lock()
		n := o.inFlight
		o.mu.Unlock()
		if n == 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

// Pull runs the fill callback as the driver thread would.
func (o *waitingOutput) Pull(n int) {
	o.mu.Lock()
	if !o.started {
		o.mu.Unlock()
		return
	}
	o.inFlight++
	o.mu.Unlock()

	o.fill(make([]byte, n))

	o.mu.Lock()
	o.inFlight--
	o.mu.Unlock()
}

type waitingOutputContext struct {
	mu  sync.Mutex
	dev *waitingOutput
}

func (f *waitingOutputContext) NewPlayback(_ capture.Config, fill func(out []byte)) (Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dev = &waitingOutput{fill: fill}
	return f.dev, nil
}

func (f *waitingOutputContext) Close() {}

func TestPauseCompletesWithPullInFlight(t *testing.T) {
	for i := 0; i < 25; i++ {
		out := &waitingOutputContext{}
		c := NewController(out)
		res, _ := oneSecondWAV()
		if err := c.Load(res); err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if err := c.Play(); err != nil {
			t.Fatalf("Play() error: %v", err)
		}
		dev := out.dev

		stopPull := make(chan struct{})
		pullerDone := make(chan struct{})
		go func() {
			defer close(pullerDone)
			for {
				select {
				case <-stopPull:
					return
				default:
					dev.Pull(1000)
				}
			}
		}()

		paused := make(chan struct{})
		go func() {
			c.Pause()
			close(paused)
		}()
		select {
		case <-paused:
		case <-time.After(2 * time.Second):
			t.Fatal("Pause blocked waiting for the device pull callback")
		}
		close(stopPull)
		<-pullerDone

		if c.Playing() {
			t.Fatal("controller still playing after Pause")
		}
		c.Close()
	}
}

func TestSeekClamps(t *testing.T) {
	c, _, _ := loadedController(t)

	if err := c.Seek(0.5); err != nil {
		t.Fatalf("Seek() error: %v", err)
	}
	p, _ := c.Progress()
	if p.Position != 500*time.Millisecond {
		t.Errorf("position after Seek(0.5) = %v, want 500ms", p.Position)
	}

	c.Seek(4.2)
	p, _ = c.Progress()
	if p.Position != time.Second || p.Percent != 100 {
		t.Errorf("seek past end must clamp to duration, got %v (%v%%)", p.Position, p.Percent)
	}

	c.Seek(-1)
	p, _ = c.Progress()
	if p.Position != 0 {
		t.Errorf("seek before start must clamp to 0, got %v", p.Position)
	}
}

func TestMuteAdvancesSilently(t *testing.T) {
	c, out, _ := loadedController(t)
	c.Play()
	c.SetMuted(true)
	dev := out.Device()

	got := dev.Pull(1000)
	for _, b := range got {
		if b != 0 {
			t.Fatal("muted playback must emit silence")
		}
	}
	p, _ := c.Progress()
	if p.Position == 0 {
		t.Error("muted playback must keep advancing")
	}

	c.SetMuted(false)
	got = dev.Pull(1000)
	all0 := true
	for _, b := range got {
		if b != 0 {
			all0 = false
			break
		}
	}
	if all0 {
		t.Error("unmuted playback must emit audio again")
	}
}

func TestUnknownDurationSuspendsProgress(t *testing.T) {
	out := &FakeOutputContext{}
	c := NewController(out)

	// An mp3-ish payload: playable only after decode, duration unknown.
	if err := c.Load(&capture.Resource{Data: []byte{0xFF, 0xFB, 0x00, 0x01}}); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if _, ok := c.Progress(); ok {
		t.Error("progress must be suspended while duration is unknown")
	}
	if err := c.Play(); err == nil {
		t.Error("Play() must fail before metadata is loaded")
	}
	if err := c.Seek(0.5); err == nil {
		t.Error("Seek() must fail before metadata is loaded")
	}

	// Metadata arrives: decoded PCM is installed, progress resumes.
	c.SetPCM(make([]byte, 16000), capture.Config{SampleRate: 16000, Channels: 1})
	p, ok := c.Progress()
	if !ok || p.Duration != 500*time.Millisecond {
		t.Errorf("progress after SetPCM = %+v ok=%v, want 500ms duration", p, ok)
	}
	if err := c.Play(); err != nil {
		t.Errorf("Play() after SetPCM error: %v", err)
	}
}

func TestPlayAfterEndRestarts(t *testing.T) {
	c, out, _ := loadedController(t)
	c.Play()
	dev := out.Device()
	for i := 0; i < 40; i++ {
		dev.Pull(1000)
	}
	if c.Playing() {
		t.Fatal("expected controller paused at end")
	}

	if err := c.Play(); err != nil {
		t.Fatalf("Play() after end error: %v", err)
	}
	p, _ := c.Progress()
	if p.Position != 0 {
		t.Errorf("replay must restart from 0, got %v", p.Position)
	}
}
