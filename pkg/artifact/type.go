package artifact

import (
	"fmt"
	"strings"
)

type Type uint8

const (
	TypeMemory    = Type(0)
	TypeDirectory = Type(1)

	TypeDefault = TypeMemory
)

var (
	AllTypes = Types{
		TypeMemory,
		TypeDirectory,
	}
)

func (this *Type) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "memory", "mem":
		*this = TypeMemory
		return nil
	case "directory", "dir", "file":
		*this = TypeDirectory
		return nil
	default:
		return fmt.Errorf("illegal-artifact-store-type: %s", plain)
	}
}

func (this Type) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-artifact-store-type-%d", this)
	}
	return string(v)
}

func (this Type) MarshalText() (text []byte, err error) {
	switch this {
	case TypeMemory:
		return []byte("memory"), nil
	case TypeDirectory:
		return []byte("directory"), nil
	default:
		return nil, fmt.Errorf("illegal artifact store type: %d", this)
	}
}

func (this *Type) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

type Types []Type

func (this Types) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this Types) String() string {
	return strings.Join(this.Strings(), ",")
}
