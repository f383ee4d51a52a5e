// Package common provides shared infrastructure for the hawkset dataset
// service: the global structured logger, service configuration, and the
// document types persisted for datasets and training samples.
//
// Logging:
//
//	The package exposes a single logrus logger routed through an
//	OutputSplitter so error-level entries reach stderr while everything else
//	goes to stdout. Containerized deployments capture the two streams
//	independently, letting log pipelines treat errors with higher priority
//	without parsing every line.
//
// All services in the repository log through common.Logger to keep field
// names and formatting uniform.
package common

import (
	"bytes"
	"os"

	"github.com/sirupsen/logrus"
)

// OutputSplitter routes formatted log output by severity: entries containing
// "level=error" go to stderr, everything else to stdout. It operates on the
// final formatted bytes, so it works with both the text and JSON formatters.
//
// The pattern match is a plain byte search; no parsing happens on the hot
// path and the splitter is safe for concurrent use.
type OutputSplitter struct{}

// Write implements io.Writer, selecting the output stream per entry.
func (splitter *OutputSplitter) Write(p []byte) (n int, err error) {
	if bytes.Contains(p, []byte("level=error")) {
		return os.Stderr.Write(p)
	}
	return os.Stdout.Write(p)
}

// Logger is the global logger instance for the hawkset service. It is
// pre-wired with the OutputSplitter; deployments may still adjust formatter
// and level after import:
//
//	common.Logger.SetFormatter(&logrus.JSONFormatter{})
//	common.Logger.SetLevel(logrus.InfoLevel)
var Logger = logrus.New()

func init() {
	Logger.SetOutput(&OutputSplitter{})
}
