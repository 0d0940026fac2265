package artifact

import (
	"github.com/blaubaer/voice-recorder/pkg/common"
)

func NewConfiguration() Configuration {
	return Configuration{
		Type: TypeDefault,
		Memory: MemoryConfiguration{
			Capacity: 20,
		},
		Directory: DirectoryConfiguration{
			Path: "recordings",
		},
	}
}

type Configuration struct {
	Type      Type                   `yaml:"type"`
	Memory    MemoryConfiguration    `yaml:"memory,omitempty"`
	Directory DirectoryConfiguration `yaml:"directory,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("artifacts.type", "Where finished recordings are kept. Possible values: "+AllTypes.String()).
		Envar("VR_ARTIFACTS_TYPE").
		SetValue(&this.Type)
	using.Flag("artifacts.memory.capacity", "How many recordings are kept in memory before the oldest is revoked. 0 means unlimited.").
		Envar("VR_ARTIFACTS_MEMORY_CAPACITY").
		IntVar(&this.Memory.Capacity)
	using.Flag("artifacts.memory.baseUrl", "Base URL recordings are published with. Empty means blob: URLs.").
		Envar("VR_ARTIFACTS_MEMORY_BASE_URL").
		StringVar(&this.Memory.BaseURL)
	using.Flag("artifacts.directory.path", "Directory recordings are written to.").
		Envar("VR_ARTIFACTS_DIRECTORY_PATH").
		StringVar(&this.Directory.Path)
}

type MemoryConfiguration struct {
	BaseURL  string `yaml:"baseUrl,omitempty"`
	Capacity int    `yaml:"capacity,omitempty"`
}

type DirectoryConfiguration struct {
	Path string `yaml:"path,omitempty"`
}
