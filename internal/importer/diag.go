package importer

import (
	"fmt"
	"time"
)

// diag pushes diagnostic lines to the consumer of an import sequence.
// Progress messages are suppressed unless verbose is set; warnings and
// errors are always emitted.
type diag struct {
	yield   func(string) bool
	verbose bool
	stopped bool
}

func timestamped(msg string) string {
	return fmt.Sprintf("[%s] %s", time.Now().UTC().Format("2006-01-02 15:04:05"), msg)
}

func (d *diag) emit(msg string) {
	if d.stopped {
		return
	}
	if !d.yield(timestamped(msg)) {
		d.stopped = true
	}
}

// infof emits a progress line, suppressed when verbose is off.
func (d *diag) infof(format string, args ...any) {
	if !d.verbose {
		return
	}
	d.emit(fmt.Sprintf(format, args...))
}

// alwaysf emits a warning or error line regardless of verbosity.
func (d *diag) alwaysf(format string, args ...any) {
	d.emit(fmt.Sprintf(format, args...))
}
