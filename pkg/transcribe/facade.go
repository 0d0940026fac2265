package transcribe

import (
	"context"
	"fmt"
	"os"
	"sync"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/voice-recorder/pkg/common"
	"github.com/blaubaer/voice-recorder/pkg/credentials"
	"github.com/blaubaer/voice-recorder/pkg/session"
)

// Facade delegates to the Transcriber selected by the Configuration. With
// TypeNone it stays empty and Transcribe is never called.
type Facade struct {
	Transcriber

	// RequestToken asks for a missing token. Defaults to the terminal.
	RequestToken func(of *string, promptName string) error

	conf         *Configuration
	saveConfFunc func() error
	lock         sync.RWMutex
}

func (this *Facade) Initialize(conf *Configuration, saveConfFunc func() error) error {
	this.lock.Lock()
	defer this.lock.Unlock()

	if this.Transcriber != nil {
		return nil
	}
	this.conf = conf
	this.saveConfFunc = saveConfFunc

	switch conf.Type {
	case TypeNone:
		return nil
	case TypeOpenAI:
		openaiConf := conf.OpenAI
		token, err := this.resolveToken(conf.OpenAI.Token, "OPENAI_API_KEY", "OpenAI API token",
			func(c *credentials.Credentials) *string { return &c.OpenAIToken },
			func(v string) { conf.OpenAI.Token = v },
		)
		if err != nil {
			return err
		}
		openaiConf.Token = token
		this.Transcriber = NewOpenAI(openaiConf, conf.Language, conf.Timestamps)
	case TypeHTTP:
		httpConf := conf.HTTP
		if httpConf.Token == "" {
			var cred credentials.Credentials
			if _, err := cred.ReadFromStore(); err != nil {
				return err
			}
			httpConf.Token = cred.HTTPToken
		}
		this.Transcriber = NewHTTP(httpConf, conf.Language, conf.Timestamps, conf.Timeout)
	default:
		return fmt.Errorf("unsupported transcription type: %v", conf.Type)
	}

	log.With("type", conf.Type).
		Debug("Transcription initialized.")
	return nil
}

func (this *Facade) resolveToken(
	configured, envar, promptName string,
	field func(*credentials.Credentials) *string,
	storeInConf func(string),
) (string, error) {
	if configured != "" {
		return configured, nil
	}

	var cred credentials.Credentials
	supported, err := cred.ReadFromStore()
	if err != nil {
		return "", err
	}
	if v := *field(&cred); v != "" {
		return v, nil
	}
	if v := os.Getenv(envar); v != "" {
		return v, nil
	}

	log.Info(promptName + " required to transcribe recordings.")
	request := this.RequestToken
	if request == nil {
		request = func(of *string, promptName string) error {
			return common.RequestStringFromTerminal(of, common.Prompt{Name: promptName, Secret: true})
		}
	}
	var token string
	if err := request(&token, promptName); err != nil {
		return "", fmt.Errorf("cannot request %s: %w", promptName, err)
	}

	*field(&cred) = token
	if supported {
		if _, err := cred.WriteToStore(); err != nil {
			return "", fmt.Errorf("cannot store credentials: %w", err)
		}
		return token, nil
	}
	storeInConf(token)
	if v := this.saveConfFunc; v != nil {
		if err := v(); err != nil {
			return "", err
		}
	}
	return token, nil
}

func (this *Facade) Enabled() bool {
	this.lock.RLock()
	defer this.lock.RUnlock()
	return this.Transcriber != nil
}

// Auto reports whether every recording should be transcribed once stopped.
func (this *Facade) Auto() bool {
	this.lock.RLock()
	defer this.lock.RUnlock()
	return this.Transcriber != nil && this.conf != nil && this.conf.Auto
}

func (this *Facade) Transcribe(ctx context.Context, a *session.Artifact) (Result, error) {
	this.lock.RLock()
	defer this.lock.RUnlock()

	v := this.Transcriber
	if v == nil {
		return Result{}, fmt.Errorf("cannot transcribe recording: transcription type is %v", TypeNone)
	}
	if this.conf != nil && this.conf.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, this.conf.Timeout)
		defer cancel()
	}
	return v.Transcribe(ctx, a)
}

func (this *Facade) Dispose() error {
	this.lock.Lock()
	defer this.lock.Unlock()

	this.Transcriber = nil
	return nil
}
