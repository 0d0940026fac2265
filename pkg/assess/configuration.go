package assess

import (
	"time"

	"github.com/blaubaer/voice-recorder/pkg/common"
)

func NewConfiguration() Configuration {
	return Configuration{
		FileField: "audio",
		Timeout:   time.Minute,
	}
}

// Configuration of the optional audio quality scoring service. An empty
// URL disables it.
type Configuration struct {
	URL       string        `yaml:"url,omitempty"`
	FileField string        `yaml:"fileField,omitempty"`
	Auto      bool          `yaml:"auto,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("assessment.url", "URL recordings are posted to for a quality score. Empty disables assessments.").
		Envar("VR_ASSESSMENT_URL").
		StringVar(&this.URL)
	using.Flag("assessment.fileField", "Name of the form field carrying the recording.").
		Envar("VR_ASSESSMENT_FILE_FIELD").
		StringVar(&this.FileField)
	using.Flag("assessment.auto", "Assess every recording right after it was stopped.").
		Envar("VR_ASSESSMENT_AUTO").
		BoolVar(&this.Auto)
	using.Flag("assessment.timeout", "Maximum time one assessment may take.").
		Envar("VR_ASSESSMENT_TIMEOUT").
		DurationVar(&this.Timeout)
}
