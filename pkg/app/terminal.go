package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	log "github.com/echocat/slf4g"

	"github.com/blaubaer/voice-recorder/pkg/artifact"
	"github.com/blaubaer/voice-recorder/pkg/assess"
	"github.com/blaubaer/voice-recorder/pkg/session"
	"github.com/blaubaer/voice-recorder/pkg/transcribe"
)

const terminalHelp = `Commands:
  r          start a new recording
  p          pause or resume the current recording
  s          stop the current recording
  d <secs>   set the auto stop time of the next recordings (empty for never)
  l          list all stored recordings
  h          show this help
  q          quit
`

// RunTerminal controls the Controller interactively until the user quits
// or ctx is done.
func (this *App) RunTerminal(ctx context.Context) error {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "voice-recorder> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "q",
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("cannot open terminal: %w", err)
	}
	defer func() {
		_ = l.Close()
	}()

	out := l.Stdout()
	if fn := this.RedirectLogs; fn != nil {
		defer fn(out)()
	}

	t := newTerminal(this.Controller, &this.Artifacts, this.config.Duration, out)
	this.Controller.OnEvent(t.onEvent)
	this.OnTranscription(t.onTranscription)
	this.OnAssessment(t.onAssessment)

	tCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go t.print(tCtx)
	go func() {
		<-tCtx.Done()
		_ = l.Close()
	}()

	_, _ = io.WriteString(out, terminalHelp)
	for {
		line, err := l.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("cannot read from terminal: %w", err)
		}
		quit, err := t.handle(tCtx, line)
		if err != nil {
			_, _ = fmt.Fprintf(out, "Error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

type terminal struct {
	controller *session.Controller
	store      artifact.Store
	duration   session.Duration
	out        io.Writer
	events     chan string
}

func newTerminal(controller *session.Controller, store artifact.Store, duration session.Duration, out io.Writer) *terminal {
	return &terminal{
		controller: controller,
		store:      store,
		duration:   duration,
		out:        out,
		events:     make(chan string, 64),
	}
}

func (this *terminal) handle(ctx context.Context, line string) (quit bool, err error) {
	command, argument, _ := strings.Cut(strings.TrimSpace(line), " ")
	argument = strings.TrimSpace(argument)

	switch strings.ToLower(command) {
	case "":
		return false, nil
	case "r":
		return false, this.controller.Start(ctx, this.duration)
	case "p":
		if !this.controller.State().IsActive() {
			this.printf("No active recording.\n")
			return false, nil
		}
		this.controller.TogglePauseResume()
		return false, nil
	case "s":
		result, err := this.controller.Stop()
		if err != nil {
			return false, err
		}
		if result == nil {
			this.printf("No active recording.\n")
		}
		return false, nil
	case "d":
		if this.controller.State().IsActive() {
			this.printf("Auto stop time cannot be changed while recording.\n")
			return false, nil
		}
		duration, err := session.ParseDuration(argument)
		if err != nil {
			return false, err
		}
		this.duration = duration
		if duration.IsZero() {
			this.printf("Recordings run until stopped.\n")
		} else {
			this.printf("Recordings stop after %ds.\n", duration.Seconds())
		}
		return false, nil
	case "l":
		this.list()
		return false, nil
	case "h", "?":
		this.printf("%s", terminalHelp)
		return false, nil
	case "q":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q, enter h for help", command)
	}
}

func (this *terminal) list() {
	var artifacts []*session.Artifact
	if this.store != nil {
		artifacts = this.store.List()
	}
	if len(artifacts) == 0 {
		this.printf("No recordings stored.\n")
		return
	}
	for _, a := range artifacts {
		this.printf("%s  %s  %8d bytes  %v  %s\n",
			a.StartedAt.Format("2006-01-02 15:04:05"), a.ID, a.Size(), a.Duration(), a.URL)
	}
}

func (this *terminal) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(this.out, format, args...)
}

func (this *terminal) onEvent(e session.Event) {
	var line string
	switch e.Kind {
	case session.EventStateChanged:
		if e.Snapshot.State == session.StateStopped {
			return
		}
		line = "State: " + e.Snapshot.State.String()
		if e.Reason != session.StopReasonNone {
			line += " (" + e.Reason.String() + ")"
		}
	case session.EventRemainingChanged:
		if v := e.Snapshot.Remaining; v != nil {
			line = fmt.Sprintf("Remaining: %ds", *v)
		} else {
			return
		}
	case session.EventArtifact:
		a := e.Artifact
		line = fmt.Sprintf("Recording %s finished: %d bytes, %v", a.ID, a.Size(), a.Duration())
		if a.URL != "" {
			line += ", " + a.URL
		}
	default:
		return
	}
	this.push(line)
}

func (this *terminal) onTranscription(result transcribe.Result, err error) {
	if err != nil {
		this.push("Transcription failed: " + err.Error())
		return
	}
	this.push(fmt.Sprintf("Transcription of %s: %s", result.ArtifactID, result.Text))
}

func (this *terminal) onAssessment(result assess.Result, err error) {
	if err != nil {
		this.push("Assessment failed: " + err.Error())
		return
	}
	this.push(fmt.Sprintf("Assessment of %s: %.4f", result.ArtifactID, result.Score))
}

func (this *terminal) push(line string) {
	select {
	case this.events <- line:
	default:
		log.With("line", line).
			Debug("Terminal is too slow. Event dropped.")
	}
}

func (this *terminal) print(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case line := <-this.events:
			this.printf("%s\n", line)
		}
	}
}
