package common

import "github.com/alecthomas/kingpin/v2"

type FlagHolder interface {
	Flag(name, help string) *kingpin.FlagClause
}

// Configurable is every component which registers its own flags.
type Configurable interface {
	SetupConfiguration(using FlagHolder)
}
