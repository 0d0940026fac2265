package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is the optional auto-stop time of a session in whole seconds.
// Zero means no countdown.
type Duration int

func ParseDuration(plain string) (Duration, error) {
	var result Duration
	if err := result.Set(plain); err != nil {
		return 0, err
	}
	return result, nil
}

func (this *Duration) Set(plain string) error {
	plain = strings.TrimSpace(plain)
	if plain == "" {
		*this = 0
		return nil
	}
	v, err := strconv.Atoi(plain)
	if err != nil || v < 0 {
		return fmt.Errorf("%w: %q is not a positive number of seconds", ErrInvalidDuration, plain)
	}
	*this = Duration(v)
	return nil
}

func (this Duration) String() string {
	if this.IsZero() {
		return ""
	}
	return strconv.Itoa(int(this))
}

func (this Duration) Seconds() int {
	return int(this)
}

func (this Duration) AsDuration() time.Duration {
	return time.Duration(this) * time.Second
}

func (this Duration) IsZero() bool {
	return this <= 0
}

func (this Duration) MarshalText() (text []byte, err error) {
	return []byte(this.String()), nil
}

func (this *Duration) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}
