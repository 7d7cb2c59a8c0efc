package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LoggerOptions controls the console logger built by InitLogger.
type LoggerOptions struct {
	Out       io.Writer
	Timestamp bool
	NoColor   bool
}

// InitLogger installs a console zerolog logger tagged with app as the global
// logger and returns it.
func InitLogger(app string, opts LoggerOptions) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    opts.NoColor,
	}
	ctx := zerolog.New(output).With().Str("app", app)
	if opts.Timestamp {
		ctx = ctx.Timestamp()
	}
	logger := ctx.Logger()
	log.Logger = logger
	return logger
}
