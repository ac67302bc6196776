package transport

import (
	"github.com/gen2brain/malgo"

	"voicedoc/internal/apperr"
	"voicedoc/internal/capture"
)

type malgoOutputContext struct {
	ctx *malgo.AllocatedContext
}

// NewOutputContext opens the platform audio backend for playback.
func NewOutputContext() (OutputContext, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, apperr.CaptureUnsupported("no audio playback backend available").WithCause(err)
	}
	return &malgoOutputContext{ctx: ctx}, nil
}

func (m *malgoOutputContext) NewPlayback(config capture.Config, fill func(out []byte)) (Output, error) {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = config.Channels
	deviceConfig.SampleRate = config.SampleRate

	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) {
			fill(out)
		},
	}

	dev, err := malgo.InitDevice(m.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, apperr.CaptureUnsupported("could not open playback device").WithCause(err)
	}
	return &malgoOutput{device: dev}, nil
}

func (m *malgoOutputContext) Close() {
	m.ctx.Uninit()
	m.ctx.Free()
}

type malgoOutput struct {
	device *malgo.Device
}

func (o *malgoOutput) Start() error {
	return o.device.Start()
}

func (o *malgoOutput) Stop() {
	o.device.Stop()
}

func (o *malgoOutput) Close() {
	o.device.Uninit()
}
