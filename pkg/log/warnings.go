package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// EnableWarningCapture routes warnings raised via pkg/errors through a
// zerolog logger writing to w (os.Stderr when w is nil). Warning types that
// implement zerolog.LogObjectMarshaler are emitted with their structured
// fields under a "warning" object.
//
// pkg/errors cannot import this package, so the sink is installed from here.
func EnableWarningCapture(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	logger := zerolog.New(w).With().Timestamp().Logger()

	tabErrors.SetZerologWarnFunc(func(warning error) {
		event := logger.Warn()
		if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
			event = event.Object("warning", obj)
		}
		event.Msg(warning.Error())
	})
}

// DisableWarningCapture restores the plain warning handler.
func DisableWarningCapture() {
	tabErrors.SetZerologWarnFunc(nil)
}
