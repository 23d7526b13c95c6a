package logging

import "github.com/andrescamacho/eve-pi-go/internal/application/common"

// MultiLogger fans every entry out to several loggers
type MultiLogger []common.Logger

// NewMultiLogger skips nil loggers
func NewMultiLogger(loggers ...common.Logger) MultiLogger {
	out := make(MultiLogger, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}

// Log implements common.Logger
func (m MultiLogger) Log(level, message string, metadata map[string]interface{}) {
	for _, l := range m {
		l.Log(level, message, metadata)
	}
}
