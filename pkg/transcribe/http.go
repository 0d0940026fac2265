package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	log "github.com/echocat/slf4g"
	"github.com/go-resty/resty/v2"

	"github.com/blaubaer/voice-recorder/pkg/session"
)

// HTTP posts recordings as multipart form to any whisper-like service and
// expects a JSON answer with either a "text" or "segments" property.
// Word timings are taken from "words" or from the words of every segment.
type HTTP struct {
	URL        string
	Token      string
	FileField  string
	Fields     map[string]string
	Language   string
	Timestamps bool

	client *resty.Client
}

func NewHTTP(conf HTTPConfiguration, language string, timestamps bool, timeout time.Duration) *HTTP {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	fileField := conf.FileField
	if fileField == "" {
		fileField = "file"
	}
	return &HTTP{
		URL:       conf.URL,
		Token:     conf.Token,
		FileField: fileField,
		Fields:    conf.Fields,
		Language:   language,
		Timestamps: timestamps,
		client:     client,
	}
}

type httpResponse struct {
	Text     *string    `json:"text"`
	Language string     `json:"language"`
	Words    []httpWord `json:"words"`
	Segments []struct {
		Text  string     `json:"text"`
		Words []httpWord `json:"words"`
	} `json:"segments"`
}

type httpWord struct {
	Word  string  `json:"word"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (this httpResponse) words() []Word {
	all := this.Words
	if len(all) == 0 {
		for _, segment := range this.Segments {
			all = append(all, segment.Words...)
		}
	}
	var result []Word
	for _, w := range all {
		text := w.Word
		if text == "" {
			text = w.Text
		}
		if text = strings.TrimSpace(text); text != "" {
			result = append(result, Word{Text: text, Start: w.Start, End: w.End})
		}
	}
	return result
}

func (this *HTTP) Transcribe(ctx context.Context, a *session.Artifact) (Result, error) {
	if this.URL == "" {
		return Result{}, fmt.Errorf("cannot transcribe recording: no url configured")
	}
	data, fileName, contentType, err := playable(a)
	if err != nil {
		return Result{}, err
	}

	fields := make(map[string]string, len(this.Fields)+3)
	if this.Timestamps {
		fields["response_format"] = "verbose_json"
		fields["timestamp_granularities[]"] = "word"
	}
	for k, v := range this.Fields {
		fields[k] = v
	}
	if v := this.Language; v != "" {
		fields["language"] = v
	}

	var body httpResponse
	req := this.client.R().
		SetContext(ctx).
		SetResult(&body).
		ForceContentType("application/json").
		SetMultipartField(this.FileField, fileName, contentType, bytes.NewReader(data)).
		SetMultipartFormData(fields)
	if v := this.Token; v != "" {
		req.SetAuthToken(v)
	}

	start := time.Now()
	rsp, err := req.Post(this.URL)
	if err != nil {
		return Result{}, fmt.Errorf("cannot transcribe recording %v using %s: %w", a.ID, this.URL, err)
	}
	log.With("status", rsp.StatusCode()).
		With("size", len(rsp.Body())).
		Debug("Transcription response received.")
	if rsp.StatusCode() == http.StatusUnauthorized {
		return Result{}, fmt.Errorf("cannot transcribe recording %v using %s: %w", a.ID, this.URL, ErrUnauthorized)
	}
	if rsp.IsError() {
		return Result{}, fmt.Errorf("cannot transcribe recording %v using %s: unexpected status code: %d - %s", a.ID, this.URL, rsp.StatusCode(), truncate(rsp.String(), 300))
	}

	text := ""
	if v := body.Text; v != nil {
		text = strings.TrimSpace(*v)
	}
	if text == "" {
		var parts []string
		for _, segment := range body.Segments {
			if v := strings.TrimSpace(segment.Text); v != "" {
				parts = append(parts, v)
			}
		}
		text = strings.Join(parts, " ")
	}
	if text == "" {
		return Result{}, fmt.Errorf("cannot transcribe recording %v: %w", a.ID, ErrNoTranscript)
	}

	language := body.Language
	if language == "" {
		language = this.Language
	}
	return Result{
		ArtifactID: a.ID,
		Text:       text,
		Language:   language,
		Words:      body.words(),
		Took:       time.Since(start),
	}, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
