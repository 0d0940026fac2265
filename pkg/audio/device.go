package audio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blaubaer/voice-recorder/pkg/common"
)

type Device struct {
	Name    string `json:"name"`
	Index   uint32 `json:"index"`
	Default bool   `json:"default,omitempty"`
}

func (this Device) String() string {
	if this.Default {
		return fmt.Sprintf("[%d] %s (default)", this.Index, this.Name)
	}
	return fmt.Sprintf("[%d] %s", this.Index, this.Name)
}

type Devices []Device

func (this Devices) IsZero() bool {
	return len(this) <= 0
}

func (this Devices) HasContent() bool {
	return !this.IsZero()
}

// Without returns all devices whose name does not match exclude.
func (this Devices) Without(exclude common.Regexp) Devices {
	if exclude.IsZero() {
		return this
	}
	result := make(Devices, 0, len(this))
	for _, v := range this {
		if !exclude.MatchString(v.Name) {
			result = append(result, v)
		}
	}
	return result
}

// Select resolves selector the way Configuration.Device documents it.
func (this Devices) Select(selector string) (Device, bool) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		for _, v := range this {
			if v.Default {
				return v, true
			}
		}
		if this.HasContent() {
			return this[0], true
		}
		return Device{}, false
	}

	if index, err := strconv.ParseUint(selector, 10, 32); err == nil {
		for _, v := range this {
			if v.Index == uint32(index) {
				return v, true
			}
		}
		return Device{}, false
	}

	selector = strings.ToLower(selector)
	for _, v := range this {
		if strings.Contains(strings.ToLower(v.Name), selector) {
			return v, true
		}
	}
	return Device{}, false
}
