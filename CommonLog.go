package physics2d

import (
	"io"

	"github.com/charmbracelet/log"
)

// LogPrefix tags every record emitted by a graph.
const LogPrefix = "physics"

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Prefix: LogPrefix})
}
