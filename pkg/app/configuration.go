package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/blaubaer/voice-recorder/pkg/analysis"
	"github.com/blaubaer/voice-recorder/pkg/artifact"
	"github.com/blaubaer/voice-recorder/pkg/assess"
	"github.com/blaubaer/voice-recorder/pkg/audio"
	"github.com/blaubaer/voice-recorder/pkg/common"
	"github.com/blaubaer/voice-recorder/pkg/server"
	"github.com/blaubaer/voice-recorder/pkg/session"
	"github.com/blaubaer/voice-recorder/pkg/transcribe"
)

func NewConfiguration() Configuration {
	return Configuration{
		Audio:         audio.NewConfiguration(),
		Analysis:      analysis.NewConfiguration(),
		Artifacts:     artifact.NewConfiguration(),
		Transcription: transcribe.NewConfiguration(),
		Assessment:    assess.NewConfiguration(),
		Server:        server.NewConfiguration(),
	}
}

type Configuration struct {
	PreventAutoSave bool `yaml:"preventAutoSave"`

	// Duration is the auto stop time new sessions start with.
	Duration session.Duration `yaml:"duration,omitempty"`

	Audio         audio.Configuration      `yaml:"audio,omitempty"`
	Analysis      analysis.Configuration   `yaml:"analysis,omitempty"`
	Artifacts     artifact.Configuration   `yaml:"artifacts,omitempty"`
	Transcription transcribe.Configuration `yaml:"transcription,omitempty"`
	Assessment    assess.Configuration     `yaml:"assessment,omitempty"`
	Server        server.Configuration     `yaml:"server,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("preventAutoSave", "If provided configuration will NOT automatically be saved upon changes.").
		Envar("VR_PREVENT_AUTO_SAVE").
		BoolVar(&this.PreventAutoSave)
	using.Flag("duration", "Seconds after which a recording stops automatically. Empty means never.").
		Short('d').
		Envar("VR_DURATION").
		SetValue(&this.Duration)

	for _, c := range []common.Configurable{
		&this.Audio,
		&this.Analysis,
		&this.Artifacts,
		&this.Transcription,
		&this.Assessment,
		&this.Server,
	} {
		c.SetupConfiguration(using)
	}
}

func (this *Configuration) loadFrom(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(this); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func (this *Configuration) loadFromFile(fn string, ignoreNotFound bool) error {
	f, err := os.Open(fn)
	if os.IsNotExist(err) && ignoreNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot open configuration file %q: %w", fn, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := this.loadFrom(f); err != nil {
		return fmt.Errorf("cannot load configuration file %q: %w", fn, err)
	}

	return nil
}

func (this *Configuration) saveTo(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(this); err != nil {
		return err
	}
	return enc.Close()
}

func (this *Configuration) saveToFile(fn string) error {
	_ = os.MkdirAll(filepath.Dir(fn), 0700)

	f, err := os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("cannot open configuration file %q: %w", fn, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := this.saveTo(f); err != nil {
		return fmt.Errorf("cannot write file %q: %w", fn, err)
	}

	return nil
}
