// Package console builds the demonstration's logger.
//
// Informational lines go to stdout. Warnings and errors go to stderr, so a
// wrong calculation stands out from the progress output.
package console

import (
	"io"

	"github.com/rs/zerolog"
)

// splitWriter routes events by level.
type splitWriter struct {
	out io.Writer
	err io.Writer
}

// Write implements io.Writer. Events without a level go to out.
func (w splitWriter) Write(p []byte) (int, error) {
	return w.out.Write(p)
}

// WriteLevel implements zerolog.LevelWriter.
func (w splitWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.WarnLevel && level < zerolog.NoLevel {
		return w.err.Write(p)
	}
	return w.out.Write(p)
}

func consoleWriter(w io.Writer) io.Writer {
	return zerolog.SyncWriter(zerolog.ConsoleWriter{
		Out:          w,
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName},
	})
}

// New returns a logger that writes human-readable lines, info to stdout and
// warn and above to stderr.
func New(stdout, stderr io.Writer) zerolog.Logger {
	w := splitWriter{
		out: consoleWriter(stdout),
		err: consoleWriter(stderr),
	}
	return zerolog.New(w).Level(zerolog.InfoLevel)
}
