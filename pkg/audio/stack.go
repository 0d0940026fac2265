package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	log "github.com/echocat/slf4g"
	"github.com/gen2brain/malgo"

	"github.com/blaubaer/voice-recorder/pkg/common"
)

// Stack is the Provider backed by the platform's capture devices (miniaudio).
type Stack struct {
	conf    *Configuration
	context *malgo.AllocatedContext
	mutex   sync.RWMutex
}

func (this *Stack) Initialize(conf *Configuration) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.context != nil {
		return nil
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		log.With("message", strings.TrimSpace(message)).
			Debug("Audio backend reported.")
	})
	if err != nil {
		return fmt.Errorf("cannot initialize audio backend: %w", err)
	}

	this.conf = conf
	this.context = ctx
	return nil
}

func (this *Stack) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.context == nil {
		return nil
	}

	err := this.context.Uninit()
	this.context.Free()
	this.context = nil
	if err != nil {
		return fmt.Errorf("cannot dispose audio backend: %w", err)
	}
	return nil
}

func (this *Stack) FindDevices() (Devices, error) {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	_, devices, err := this.findDevices()
	return devices, err
}

func (this *Stack) findDevices() ([]malgo.DeviceInfo, Devices, error) {
	if this.context == nil {
		return nil, nil, common.ErrNotInitialized
	}

	infos, err := this.context.Devices(malgo.Capture)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot enumerate capture devices: %w", err)
	}

	result := make(Devices, len(infos))
	for i, info := range infos {
		result[i] = Device{
			Name:    info.Name(),
			Index:   uint32(i),
			Default: info.IsDefault != 0,
		}
	}
	return infos, result.Without(this.conf.Exclude), nil
}

func (this *Stack) Acquire(ctx context.Context) (Stream, error) {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos, devices, err := this.findDevices()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	device, ok := devices.Select(this.conf.Device)
	if !ok {
		if devices.IsZero() {
			return nil, ErrDeviceUnavailable
		}
		return nil, fmt.Errorf("%w: no capture device matches %q", ErrDeviceUnavailable, this.conf.Device)
	}

	format := this.conf.Format()
	config := malgo.DefaultDeviceConfig(malgo.Capture)
	config.Capture.Format = malgo.FormatS16
	config.Capture.Channels = format.Channels
	config.Capture.DeviceID = infos[device.Index].ID.Pointer()
	config.SampleRate = format.SampleRate
	config.Alsa.NoMMap = 1

	var captured *malgo.Device
	stream := newFragmentStream(format, func() error {
		if captured == nil {
			return nil
		}
		defer captured.Uninit()
		return captured.Stop()
	})

	captured, err = malgo.InitDevice(this.context.Context, config, malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			stream.push(input)
		},
		Stop: func() {
			stream.end(ErrDeviceStopped)
		},
	})
	if err != nil {
		_ = stream.Release()
		return nil, classifyBackendError(device, err)
	}
	if err := captured.Start(); err != nil {
		_ = stream.Release()
		return nil, classifyBackendError(device, err)
	}

	if err := ctx.Err(); err != nil {
		_ = stream.Release()
		return nil, err
	}

	log.With("device", device).
		With("format", format).
		Debug("Capture device acquired.")

	return stream, nil
}

func classifyBackendError(device Device, err error) error {
	if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrDeviceUnavailable) {
		return err
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "denied") || strings.Contains(msg, "permission") {
		return fmt.Errorf("%w: device %v: %v", ErrPermissionDenied, device, err)
	}
	return fmt.Errorf("%w: device %v: %v", ErrDeviceUnavailable, device, err)
}
