// Package capture implements the client-side recording state machine: it
// produces a playable audio resource either from a live microphone recording
// or from uploaded file bytes.
package capture

// DataCallback receives PCM chunks as they arrive from the device.
type DataCallback func(data []byte, frameCount uint32)

// Config describes the capture format. 16-bit signed little-endian samples
// are assumed throughout.
type Config struct {
	SampleRate uint32
	Channels   uint32
}

// DefaultConfig is 16 kHz mono, the format the transcription providers take.
func DefaultConfig() Config {
	return Config{SampleRate: 16000, Channels: 1}
}

// DeviceInfo identifies a capture device.
type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

// Context abstracts the audio backend so the session can run against the
// real microphone or a fake in tests.
type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(config Config, cb DataCallback) (Device, error)
	Close()
}

// Device is an open audio input handle.
type Device interface {
	Start() error
	Stop()
	Close()
}
