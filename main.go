package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	log "github.com/echocat/slf4g"
	"github.com/echocat/slf4g/native"
	"github.com/echocat/slf4g/native/consumer"
	"github.com/echocat/slf4g/native/facade/value"
	"github.com/echocat/slf4g/native/formatter"

	"github.com/blaubaer/voice-recorder/pkg/app"
	"github.com/blaubaer/voice-recorder/pkg/common"
)

func main() {
	buf := common.NewRingLineBuffer(2000, 4096)
	buf.TruncateTooLongLines = true
	wf := &writerFacade{delegates: []io.Writer{os.Stderr, buf}}
	consumer.Default = consumer.NewWriter(wf)

	lv := value.NewProvider(native.DefaultProvider)
	lv.Consumer.Formatter.Codec = value.MappingFormatterCodec{
		"text": formatter.NewText(func(v *formatter.Text) {
			bv := true
			v.AllowMultiLineMessage = &bv
			v.MultiLineMessageAfterFields = &bv
		}),
		"json": formatter.NewJson(),
	}

	a := app.NewApp()
	a.Logs = buf
	a.RedirectLogs = func(to io.Writer) func() {
		wf.set([]io.Writer{to, buf})
		return func() {
			wf.set([]io.Writer{os.Stderr, buf})
		}
	}

	run := func(fn func(context.Context) error) func(*kingpin.ParseContext) error {
		return func(*kingpin.ParseContext) (rErr error) {
			if err := a.Initialize(); err != nil {
				return err
			}
			defer func() {
				if err := a.Dispose(); err != nil && rErr == nil {
					rErr = err
				}
			}()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			go func() {
				<-ctx.Done()
				log.Info("Terminated. Going down...")
			}()

			return fn(ctx)
		}
	}

	cmd := kingpin.New("voice-recorder", "Records audio from the microphone with live analysis and optional transcription.")
	a.SetupConfiguration(cmd)

	cmd.Flag("log.level", "").
		SetValue(lv.Level)
	cmd.Flag("log.format", "").
		Default("text").
		SetValue(lv.Consumer.Formatter)
	cmd.Flag("log.color", "").
		Default("always").
		SetValue(lv.Consumer.Formatter.ColorMode)

	cmd.Command("record", "Controls recordings interactively from the terminal.").
		Default().
		Action(run(a.RunTerminal))
	cmd.Command("serve", "Serves the HTTP control surface until terminated.").
		Action(run(a.Serve))
	cmd.Command("devices", "Lists all available capture devices.").
		Action(run(func(context.Context) error {
			return a.ListDevices(os.Stdout)
		}))

	kingpin.MustParse(cmd.Parse(os.Args[1:]))
}

type writerFacade struct {
	delegates []io.Writer
	mutex     sync.RWMutex
}

func (this *writerFacade) Write(p []byte) (n int, err error) {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	for i, w := range this.delegates {
		var nn int
		if nn, err = w.Write(p); err != nil {
			return n, err
		}
		if i == 0 {
			n = nn
		} else if n != nn {
			return n, fmt.Errorf("the first writer wrote %d, but another one wrote %d bytes", n, nn)
		}
	}

	return
}

func (this *writerFacade) set(next []io.Writer) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.delegates = next
}
