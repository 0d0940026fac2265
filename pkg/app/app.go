package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"dario.cat/mergo"
	log "github.com/echocat/slf4g"

	"github.com/blaubaer/voice-recorder/pkg/artifact"
	"github.com/blaubaer/voice-recorder/pkg/assess"
	"github.com/blaubaer/voice-recorder/pkg/audio"
	"github.com/blaubaer/voice-recorder/pkg/common"
	"github.com/blaubaer/voice-recorder/pkg/server"
	"github.com/blaubaer/voice-recorder/pkg/session"
	"github.com/blaubaer/voice-recorder/pkg/transcribe"
)

const backgroundDrainTimeout = 30 * time.Second

func NewApp() *App {
	return &App{
		config: NewConfiguration(),
	}
}

type App struct {
	AudioStack        audio.Stack
	Artifacts         artifact.Facade
	Transcription     transcribe.Facade
	Assessment        *assess.Assessor
	Controller        *session.Controller
	ConfigurationFile string

	// Logs receives a copy of everything logged, served on /logs.
	Logs *common.RingLineBuffer
	// RedirectLogs lets the interactive terminal take over the log output
	// while its prompt is shown. It returns how to restore the output.
	RedirectLogs func(to io.Writer) (restore func())

	configFromFlags Configuration
	config          Configuration

	mutex                  sync.RWMutex
	transcriptionListeners []func(transcribe.Result, error)
	assessmentListeners    []func(assess.Result, error)
	background             sync.WaitGroup
}

func (this *App) SetupConfiguration(using common.FlagHolder) {
	this.configFromFlags.SetupConfiguration(using)

	using.Flag("configuration", "Defines the file from which the configuration should be loaded and/or stored to.").
		Short('c').
		Envar("VR_CONFIGURATION").
		StringVar(&this.ConfigurationFile)
}

func (this *App) Configuration() Configuration {
	return this.config
}

func (this *App) Initialize() (rErr error) {
	success := false
	defer func() {
		if !success {
			if err := this.Dispose(); err != nil && rErr == nil {
				rErr = err
			}
		}
	}()

	if err := this.config.loadFromFile(this.configurationFile(), true); err != nil {
		return err
	}
	if err := mergo.Merge(&this.config, this.configFromFlags, mergo.WithOverride, mergo.WithTransformers(common.MergeTransformers{})); err != nil {
		return fmt.Errorf("cannot merge configuration from flags: %w", err)
	}
	if err := this.config.Analysis.Validate(); err != nil {
		return fmt.Errorf("illegal analysis configuration: %w", err)
	}

	provider, err := this.newProvider()
	if err != nil {
		return err
	}
	if err := this.Artifacts.Initialize(&this.config.Artifacts); err != nil {
		return err
	}
	if err := this.Transcription.Initialize(&this.config.Transcription, this.alwaysSaveConf); err != nil {
		return err
	}
	this.Assessment = assess.New(this.config.Assessment)

	this.Controller = session.NewController(provider)
	this.Controller.Publisher = &this.Artifacts
	this.Controller.Analysis = this.config.Analysis
	this.Controller.OnEvent(this.onEvent)

	if err := this.saveConf(false); err != nil {
		return err
	}

	success = true
	return nil
}

func (this *App) newProvider() (audio.Provider, error) {
	conf := &this.config.Audio
	switch conf.Source {
	case audio.SourceDevice:
		if err := this.AudioStack.Initialize(conf); err != nil {
			return nil, err
		}
		return &this.AudioStack, nil
	case audio.SourceSynthetic:
		return &audio.Synthetic{
			Format:        conf.Format(),
			Configuration: conf.Synthetic,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported audio source: %v", conf.Source)
	}
}

func (this *App) configurationFile() string {
	if v := this.ConfigurationFile; v != "" {
		return v
	}
	return defaultConfigurationFile()
}

func (this *App) alwaysSaveConf() error {
	return this.saveConf(true)
}

func (this *App) saveConf(always bool) error {
	if this.config.PreventAutoSave {
		log.Debug("Automatically save of configuration disabled.")
		return nil
	}

	fn := this.configurationFile()
	if !always {
		_, err := os.Stat(fn)
		if os.IsNotExist(err) {
			log.With("file", fn).Info("Configuration absent.")
		} else if err != nil {
			return err
		} else {
			return nil
		}
	}

	if err := this.config.saveToFile(fn); err != nil {
		return err
	}

	log.With("file", fn).Info("Configuration saved.")

	return nil
}

// OnTranscription registers fn for every finished automatic transcription.
func (this *App) OnTranscription(fn func(transcribe.Result, error)) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.transcriptionListeners = append(this.transcriptionListeners, fn)
}

// OnAssessment registers fn for every finished automatic assessment.
func (this *App) OnAssessment(fn func(assess.Result, error)) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.assessmentListeners = append(this.assessmentListeners, fn)
}

func (this *App) onEvent(e session.Event) {
	if e.Kind != session.EventArtifact || e.Artifact == nil {
		return
	}
	transcribing, assessing := this.Transcription.Auto(), this.Assessment.Auto()
	if !transcribing && !assessing {
		return
	}
	if len(e.Artifact.Data) == 0 {
		log.With("id", e.Artifact.ID).
			Info("Recording is empty. Transcription and assessment skipped.")
		return
	}
	if transcribing {
		this.background.Add(1)
		go this.transcribe(e.Artifact)
	}
	if assessing {
		this.background.Add(1)
		go this.assess(e.Artifact)
	}
}

func (this *App) assess(a *session.Artifact) {
	defer this.background.Done()

	logger := log.With("id", a.ID)
	result, err := this.Assessment.Assess(context.Background(), a)
	if err != nil {
		logger.WithError(err).
			Warn("Cannot assess recording.")
	} else {
		logger.With("score", result.Score).
			With("took", result.Took).
			Info("Recording assessed.")
	}

	this.mutex.RLock()
	listeners := this.assessmentListeners
	this.mutex.RUnlock()
	for _, l := range listeners {
		l(result, err)
	}
}

func (this *App) transcribe(a *session.Artifact) {
	defer this.background.Done()

	logger := log.With("id", a.ID)
	logger.Debug("Transcribing recording...")
	result, err := this.Transcription.Transcribe(context.Background(), a)
	if err != nil {
		logger.WithError(err).
			Warn("Cannot transcribe recording.")
	} else {
		logger.With("took", result.Took).
			With("text", result.Text).
			Info("Recording transcribed.")
	}

	this.mutex.RLock()
	listeners := this.transcriptionListeners
	this.mutex.RUnlock()
	for _, l := range listeners {
		l(result, err)
	}
}

func (this *App) waitForBackground(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		this.background.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		log.With("timeout", timeout).
			Warn("Pending transcriptions and assessments did not finish in time.")
	}
}

// Serve runs the HTTP control surface until ctx is done.
func (this *App) Serve(ctx context.Context) error {
	srv := server.New(this.config.Server, this.Controller, &this.Artifacts)
	srv.Transcription = &this.Transcription
	srv.Assessment = this.Assessment
	srv.Logs = this.Logs
	this.OnTranscription(srv.OnTranscription)
	this.OnAssessment(srv.OnAssessment)
	return srv.Run(ctx)
}

// ListDevices writes all capture devices to w.
func (this *App) ListDevices(w io.Writer) error {
	if this.config.Audio.Source != audio.SourceDevice {
		_, err := fmt.Fprintf(w, "Audio source is %v. No devices to list.\n", this.config.Audio.Source)
		return err
	}
	devices, err := this.AudioStack.FindDevices()
	if err != nil {
		return err
	}
	if devices.IsZero() {
		_, err := fmt.Fprintln(w, "No capture devices found.")
		return err
	}
	for _, d := range devices {
		if _, err := fmt.Fprintln(w, d); err != nil {
			return err
		}
	}
	return nil
}

func (this *App) Dispose() (rErr error) {
	defer func() {
		if err := this.AudioStack.Dispose(); err != nil && rErr == nil {
			rErr = err
		}
	}()
	defer func() {
		if err := this.Artifacts.Dispose(); err != nil && rErr == nil {
			rErr = err
		}
	}()
	defer func() {
		if err := this.Transcription.Dispose(); err != nil && rErr == nil {
			rErr = err
		}
	}()
	defer this.waitForBackground(backgroundDrainTimeout)

	if v := this.Controller; v != nil {
		return v.Close()
	}
	return nil
}
