package common

import (
	"fmt"
	"os"

	"github.com/chzyer/readline"
	log "github.com/echocat/slf4g"
)

// Prompt describes a value requested from the user on the terminal.
type Prompt struct {
	Name string
	// CanBeEmpty accepts an empty answer instead of asking again.
	CanBeEmpty bool
	// Secret masks the input.
	Secret bool
}

type settable interface {
	IsZero() bool
	Set(string) error
}

// RequestFromTerminal asks for of only when it is still empty.
func RequestFromTerminal(of settable, prompt Prompt) error {
	if !of.IsZero() {
		return nil
	}

	l, err := readline.NewEx(&readline.Config{
		Stdin:  os.Stdin,
		Stdout: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("could not read from terminal for prompt %q: %w", prompt.Name, err)
	}
	defer func() {
		_ = l.Close()
	}()

	text := fmt.Sprintf("Enter %s: ", prompt.Name)
	l.SetPrompt(text)
	l.ResetHistory()
	for of.IsZero() {
		var line string
		if prompt.Secret {
			var b []byte
			b, err = l.ReadPassword(text)
			line = string(b)
		} else {
			line, err = l.Readline()
		}
		if err != nil {
			return fmt.Errorf("could not read from terminal for prompt %q: %w", prompt.Name, err)
		}
		if err := of.Set(line); err != nil {
			log.WithError(err).
				With("prompt", prompt.Name).
				Error("Illegal input.")
		}
		if prompt.CanBeEmpty && of.IsZero() {
			return nil
		}
	}
	return nil
}

func RequestStringFromTerminal(of *string, prompt Prompt) error {
	buf := rawString(*of)
	if err := RequestFromTerminal(&buf, prompt); err != nil {
		return err
	}
	*of = string(buf)
	return nil
}

type rawString []byte

func (v rawString) IsZero() bool {
	return len(v) == 0
}

func (v *rawString) Set(s string) error {
	*v = rawString(s)
	return nil
}
