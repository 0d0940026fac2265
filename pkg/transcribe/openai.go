package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/blaubaer/voice-recorder/pkg/common"
	"github.com/blaubaer/voice-recorder/pkg/session"
)

// OpenAI transcribes with the audio transcription endpoint of OpenAI or
// any compatible service.
type OpenAI struct {
	Language   string
	Model      string
	Timestamps bool

	client openai.Client
}

func NewOpenAI(conf OpenAIConfiguration, language string, timestamps bool) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(conf.Token),
		option.WithMaxRetries(0),
	}
	if v := conf.BaseURL; v != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(v, "/")+"/"))
	}
	model := conf.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{
		Language:   language,
		Model:      model,
		Timestamps: timestamps,
		client:     openai.NewClient(opts...),
	}
}

func (this *OpenAI) Transcribe(ctx context.Context, a *session.Artifact) (Result, error) {
	data, fileName, contentType, err := playable(a)
	if err != nil {
		return Result{}, err
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(data), fileName, contentType),
		Model: openai.AudioModel(this.Model),
	}
	if v := this.Language; v != "" {
		params.Language = openai.String(v)
	}
	if this.Timestamps {
		params.ResponseFormat = openai.AudioResponseFormatVerboseJSON
		params.TimestampGranularities = []string{"word"}
	}

	start := time.Now()
	rsp, err := this.client.Audio.Transcriptions.New(ctx, params)
	if apiErr, ok := common.AsError[*openai.Error](err); ok && apiErr.StatusCode == http.StatusUnauthorized {
		return Result{}, fmt.Errorf("cannot transcribe recording %v using model %s: %w: %v", a.ID, this.Model, ErrUnauthorized, err)
	}
	if err != nil {
		return Result{}, fmt.Errorf("cannot transcribe recording %v using model %s: %w", a.ID, this.Model, err)
	}

	text := strings.TrimSpace(rsp.Text)
	if text == "" {
		return Result{}, fmt.Errorf("cannot transcribe recording %v: %w", a.ID, ErrNoTranscript)
	}
	var words []Word
	if this.Timestamps {
		if words, err = verboseWords(rsp.RawJSON()); err != nil {
			return Result{}, fmt.Errorf("cannot decode word timestamps of recording %v: %w", a.ID, err)
		}
	}
	return Result{
		ArtifactID: a.ID,
		Text:       text,
		Language:   this.Language,
		Words:      words,
		Took:       time.Since(start),
	}, nil
}

// verboseWords extracts the words of a verbose_json transcription which
// the typed response does not carry.
func verboseWords(raw string) ([]Word, error) {
	if raw == "" {
		return nil, nil
	}
	var body struct {
		Words []struct {
			Word  string  `json:"word"`
			Start float64 `json:"start"`
			End   float64 `json:"end"`
		} `json:"words"`
	}
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return nil, err
	}
	var result []Word
	for _, w := range body.Words {
		if text := strings.TrimSpace(w.Word); text != "" {
			result = append(result, Word{Text: text, Start: w.Start, End: w.End})
		}
	}
	return result, nil
}
