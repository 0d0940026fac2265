package server

import (
	"time"

	"github.com/blaubaer/voice-recorder/pkg/common"
)

func NewConfiguration() Configuration {
	return Configuration{
		Listen:        ":8080",
		FrameInterval: 100 * time.Millisecond,
	}
}

type Configuration struct {
	Listen string `yaml:"listen,omitempty"`
	// FrameInterval is how often analysis frames are pushed to live clients.
	FrameInterval time.Duration `yaml:"frameInterval,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("server.listen", "Address the HTTP control surface listens on.").
		Envar("VR_SERVER_LISTEN").
		StringVar(&this.Listen)
	using.Flag("server.frameInterval", "How often live analysis frames are pushed to connected clients.").
		Envar("VR_SERVER_FRAME_INTERVAL").
		DurationVar(&this.FrameInterval)
}
