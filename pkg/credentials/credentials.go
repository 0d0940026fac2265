package credentials

import (
	"encoding/json"
)

const appName = "github.com/blaubaer/voice-recorder"

// Credentials holds the secrets of the transcription services. Where the
// platform offers a credential store they are kept there instead of the
// configuration file.
type Credentials struct {
	OpenAIToken string `json:"openai_token,omitempty"`
	HTTPToken   string `json:"http_token,omitempty"`
}

func (this *Credentials) IsZero() bool {
	return this.OpenAIToken == "" && this.HTTPToken == ""
}

func (this *Credentials) MarshalBinary() (data []byte, err error) {
	return json.Marshal(this)
}

func (this *Credentials) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, this)
}
