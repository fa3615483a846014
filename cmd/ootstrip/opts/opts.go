package opts

import (
	"time"

	"github.com/walteh/ootstrip/pkg/log"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Engine       string
	MatchTimeout time.Duration
	Summary      bool
	Debug        bool

	// UserLogger is set once flags are parsed
	UserLogger *log.Logger
}
