package options

import "go.uber.org/zap/zapcore"

// FilteringCore wraps zapcore.Core and drops entries rejected by the filter.
type FilteringCore struct {
	zapcore.Core
	filter FilterFunc
}

// FilterFunc decides whether the entry is to be written.
type FilterFunc func(zapcore.Entry) bool

// NewFilteringCore returns a core middleware that uses the given filter function
// to decide whether to log this message or not.
func NewFilteringCore(next zapcore.Core, filter FilterFunc) zapcore.Core {
	return &FilteringCore{next, filter}
}

// With implements zapcore.Core interface, child cores are filtered too.
func (c *FilteringCore) With(fields []zapcore.Field) zapcore.Core {
	return &FilteringCore{c.Core.With(fields), c.filter}
}

// Check implements zapcore.Core interface and performs log entries filtering.
func (c *FilteringCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.filter(e) {
		return c.Core.Check(e, ce)
	}
	return ce
}

// QuietFilter passes warnings and errors of any logger, but only the entries
// of the unnamed (runner) logger below that. Test cases log via named loggers.
func QuietFilter(e zapcore.Entry) bool {
	return e.Level >= zapcore.WarnLevel || e.LoggerName == ""
}
