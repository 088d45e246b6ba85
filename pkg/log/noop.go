package log

// Nop drops every entry.
var Nop Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Trace(string, ...Field) {}
func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field)  {}
func (nopLogger) Warn(string, ...Field)  {}
func (nopLogger) Error(string, ...Field) {}

// OrNop returns l, or Nop when l is nil. Constructors that take an optional
// logger run their argument through it.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop
	}
	return l
}
