package assess

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	log "github.com/echocat/slf4g"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/blaubaer/voice-recorder/pkg/session"
)

var (
	ErrDisabled       = errors.New("assessment is disabled")
	ErrEmptyRecording = errors.New("recording is empty")
	ErrNoScore        = errors.New("no score found in response")
)

type Result struct {
	ArtifactID uuid.UUID     `json:"artifactId"`
	Score      float64       `json:"score"`
	Took       time.Duration `json:"took"`
}

// Assessor posts recordings as multipart form to a service predicting the
// perceived audio quality and expects a JSON answer with a "score".
type Assessor struct {
	url       string
	fileField string
	auto      bool
	client    *resty.Client
}

func New(conf Configuration) *Assessor {
	client := resty.New()
	if conf.Timeout > 0 {
		client.SetTimeout(conf.Timeout)
	}
	fileField := conf.FileField
	if fileField == "" {
		fileField = "audio"
	}
	return &Assessor{
		url:       conf.URL,
		fileField: fileField,
		auto:      conf.Auto,
		client:    client,
	}
}

func (this *Assessor) Enabled() bool {
	return this != nil && this.url != ""
}

// Auto reports whether every recording should be assessed once stopped.
func (this *Assessor) Auto() bool {
	return this.Enabled() && this.auto
}

type response struct {
	Score *float64 `json:"score"`
}

func (this *Assessor) Assess(ctx context.Context, a *session.Artifact) (Result, error) {
	if !this.Enabled() {
		return Result{}, ErrDisabled
	}
	if a == nil || len(a.Data) == 0 {
		return Result{}, ErrEmptyRecording
	}
	data, contentType, err := a.Playable()
	if err != nil {
		return Result{}, err
	}

	var body response
	start := time.Now()
	rsp, err := this.client.R().
		SetContext(ctx).
		SetMultipartField(this.fileField, "recording"+a.Extension(), contentType, bytes.NewReader(data)).
		SetResult(&body).
		ForceContentType("application/json").
		Post(this.url)
	if err != nil {
		return Result{}, fmt.Errorf("cannot assess recording %v using %s: %w", a.ID, this.url, err)
	}
	log.With("status", rsp.StatusCode()).
		With("size", len(rsp.Body())).
		Debug("Assessment response received.")
	if rsp.IsError() {
		return Result{}, fmt.Errorf("cannot assess recording %v using %s: unexpected status code: %d", a.ID, this.url, rsp.StatusCode())
	}
	if body.Score == nil {
		return Result{}, fmt.Errorf("cannot assess recording %v: %w", a.ID, ErrNoScore)
	}

	return Result{
		ArtifactID: a.ID,
		Score:      math.Round(*body.Score*1e4) / 1e4,
		Took:       time.Since(start),
	}, nil
}
