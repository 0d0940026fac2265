package transcribe

import (
	"time"

	"github.com/blaubaer/voice-recorder/pkg/common"
)

const (
	DefaultOpenAIModel = "whisper-1"
)

func NewConfiguration() Configuration {
	return Configuration{
		Type:    TypeDefault,
		Auto:    true,
		Timeout: 2 * time.Minute,
		OpenAI: OpenAIConfiguration{
			Model: DefaultOpenAIModel,
		},
		HTTP: HTTPConfiguration{
			FileField: "file",
		},
	}
}

type Configuration struct {
	Type       Type          `yaml:"type"`
	Auto       bool          `yaml:"auto"`
	Language   string        `yaml:"language,omitempty"`
	Timestamps bool          `yaml:"timestamps,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`

	OpenAI OpenAIConfiguration `yaml:"openai,omitempty"`
	HTTP   HTTPConfiguration   `yaml:"http,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("transcription.type", "Service finished recordings are transcribed with. Possible values: "+AllTypes.String()).
		Envar("VR_TRANSCRIPTION_TYPE").
		SetValue(&this.Type)
	using.Flag("transcription.auto", "Transcribe every recording right after it was stopped.").
		Envar("VR_TRANSCRIPTION_AUTO").
		BoolVar(&this.Auto)
	using.Flag("transcription.language", "ISO-639-1 language of the recordings. Empty lets the service detect it.").
		Envar("VR_TRANSCRIPTION_LANGUAGE").
		StringVar(&this.Language)
	using.Flag("transcription.timestamps", "Request the start and end of every transcribed word.").
		Envar("VR_TRANSCRIPTION_TIMESTAMPS").
		BoolVar(&this.Timestamps)
	using.Flag("transcription.timeout", "Maximum time one transcription may take.").
		Envar("VR_TRANSCRIPTION_TIMEOUT").
		DurationVar(&this.Timeout)

	this.OpenAI.SetupConfiguration(using)
	this.HTTP.SetupConfiguration(using)
}

type OpenAIConfiguration struct {
	BaseURL string `yaml:"baseUrl,omitempty"`
	Model   string `yaml:"model,omitempty"`
	Token   string `yaml:"token,omitempty"`
}

func (this *OpenAIConfiguration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("transcription.openai.baseUrl", "Base URL of an OpenAI compatible API. Empty means api.openai.com.").
		Envar("VR_TRANSCRIPTION_OPENAI_BASE_URL").
		StringVar(&this.BaseURL)
	using.Flag("transcription.openai.model", "Model used for transcriptions.").
		Envar("VR_TRANSCRIPTION_OPENAI_MODEL").
		StringVar(&this.Model)
	using.Flag("transcription.openai.token", "API token. If absent it is taken from the credential store or requested on the terminal.").
		Envar("VR_TRANSCRIPTION_OPENAI_TOKEN").
		StringVar(&this.Token)
}

type HTTPConfiguration struct {
	URL       string            `yaml:"url,omitempty"`
	Token     string            `yaml:"token,omitempty"`
	FileField string            `yaml:"fileField,omitempty"`
	Fields    map[string]string `yaml:"fields,omitempty"`
}

func (this *HTTPConfiguration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("transcription.http.url", "URL recordings are posted to as multipart form.").
		Envar("VR_TRANSCRIPTION_HTTP_URL").
		StringVar(&this.URL)
	using.Flag("transcription.http.token", "Bearer token sent along. Optional.").
		Envar("VR_TRANSCRIPTION_HTTP_TOKEN").
		StringVar(&this.Token)
	using.Flag("transcription.http.fileField", "Name of the form field carrying the recording.").
		Envar("VR_TRANSCRIPTION_HTTP_FILE_FIELD").
		StringVar(&this.FileField)
	using.Flag("transcription.http.field", "Additional form field (key=value), can be repeated.").
		Envar("VR_TRANSCRIPTION_HTTP_FIELDS").
		StringMapVar(&this.Fields)
}
