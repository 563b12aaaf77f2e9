package servecmder

import (
	"io"
	"log/slog"

	"github.com/papercomputeco/praxisvoice/pkg/dotdir"
	"github.com/papercomputeco/praxisvoice/pkg/logger"
)

const logFileName = "serve.log"

// newServeLogger writes pretty records to the terminal and, when logFile is
// set, JSON records to it.
func newServeLogger(debug bool, terminal, logFile io.Writer) *slog.Logger {
	pretty := logger.New(
		logger.WithDebug(debug),
		logger.WithPretty(true),
		logger.WithWriter(terminal),
	)
	if logFile == nil {
		return pretty
	}

	file := logger.New(
		logger.WithDebug(debug),
		logger.WithJSON(true),
		logger.WithWriter(logFile),
		logger.WithService("praxisvoice"),
	)
	return logger.Multi(pretty, file)
}

// openServeLog opens the JSON log file in the .praxisvoice directory. It
// returns a nil closer when there is no directory to log to.
func openServeLog(configDir string) (io.WriteCloser, error) {
	f, err := dotdir.NewManager().OpenLog(configDir, logFileName)
	if err != nil || f == nil {
		return nil, err
	}
	return f, nil
}
