package common

import (
	"bytes"
	"errors"
	"io"
	"sync"
)

var (
	ErrLineTooLong   = errors.New("line too long")
	ErrStopIteration = errors.New("stop iteration")
)

func NewRingLineBuffer(maxLines, maxLineLength uint32) *RingLineBuffer {
	return &RingLineBuffer{
		current:         make([]byte, maxLineLength),
		currentCapacity: int(maxLineLength),
		lines:           make([][]byte, maxLines),
		linesCapacity:   int(maxLines),
	}
}

// RingLineBuffer keeps the last lines written to it, for example the log
// output of the running process.
type RingLineBuffer struct {
	TruncateTooLongLines bool
	OnNewLine            func([]byte) ([]byte, error)

	currentLength   int
	current         []byte
	currentCapacity int

	linesOffset   int
	linesLength   int
	lines         [][]byte
	linesCapacity int

	mutex sync.RWMutex
}

func (this *RingLineBuffer) Write(p []byte) (n int, err error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	for len(p) > 0 {
		var hasNl, treatAsNlAnyway bool
		rl := bytes.IndexRune(p, '\n')
		if rl < 0 {
			rl = len(p)
			hasNl = false
		} else {
			hasNl = true
		}

		if rl+this.currentLength > this.currentCapacity {
			if !this.TruncateTooLongLines {
				return n, ErrLineTooLong
			}
			// Cut the line and continue with the rest as a new one.
			rl -= (rl + this.currentLength) - this.currentCapacity
			hasNl = false
			treatAsNlAnyway = true
		}
		copy(this.current[this.currentLength:], p[:rl])
		n += rl
		this.currentLength += rl
		if hasNl || treatAsNlAnyway {
			if hasNl {
				// The \n itself is consumed but not stored.
				n++
			}
			if err := this.addLine(this.current[:this.currentLength]); err != nil {
				return n, err
			}
			this.currentLength = 0
		}

		if hasNl {
			rl++
		}
		if len(p) <= rl {
			break
		}
		p = p[rl:]
	}

	return n, nil
}

func (this *RingLineBuffer) AddLine(line []byte) error {
	if len(line) > this.currentCapacity {
		return ErrLineTooLong
	}

	this.mutex.Lock()
	defer this.mutex.Unlock()

	return this.addLine(line)
}

func (this *RingLineBuffer) addLine(line []byte) error {
	if v := this.OnNewLine; v != nil {
		var err error
		if line, err = v(line); err != nil {
			return err
		}
	}
	if this.linesCapacity == 0 {
		return nil
	}

	if this.linesLength < this.linesCapacity {
		this.lines[(this.linesOffset+this.linesLength)%this.linesCapacity] = bytes.Clone(line)
		this.linesLength++
		return nil
	}

	this.lines[this.linesOffset] = bytes.Clone(line)
	this.linesOffset = (this.linesOffset + 1) % this.linesCapacity
	return nil
}

func (this *RingLineBuffer) NumberOfLines() uint32 {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	return this.numberOfLines()
}

func (this *RingLineBuffer) numberOfLines() uint32 {
	return uint32(this.linesLength)
}

// LineConsumer receives the lines from the oldest to the newest. Returning
// ErrStopIteration ends the iteration without an error.
type LineConsumer func(uint32, []byte) error

func (this *RingLineBuffer) WriteTo(to io.Writer) (n int64, err error) {
	return this.WriteTailTo(to, 0)
}

// WriteTailTo writes the newest maxLines lines to the given writer. 0 writes
// all lines.
func (this *RingLineBuffer) WriteTailTo(to io.Writer, maxLines uint32) (n int64, err error) {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	var skip uint32
	if total := this.numberOfLines(); maxLines > 0 && total > maxLines {
		skip = total - maxLines
	}

	err = this.consumeLines(func(i uint32, line []byte) error {
		if i < skip {
			return nil
		}
		wn, wErr := to.Write(append(bytes.Clone(line), '\n'))
		n += int64(wn)
		return wErr
	})

	return n, err
}

func (this *RingLineBuffer) ConsumeLines(consumer LineConsumer) error {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	return this.consumeLines(consumer)
}

func (this *RingLineBuffer) consumeLines(consumer LineConsumer) error {
	for i := 0; i < this.linesLength; i++ {
		line := this.lines[(this.linesOffset+i)%this.linesCapacity]
		if err := consumer(uint32(i), line); errors.Is(err, ErrStopIteration) {
			return nil
		} else if err != nil {
			return err
		}
	}
	return nil
}
