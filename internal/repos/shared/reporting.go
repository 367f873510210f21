package shared

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Reporter emits formatted outcome lines to an underlying sink.
type Reporter interface {
	Printf(format string, args ...any)
}

type writerReporter struct {
	writer io.Writer
	mutex  *sync.Mutex
}

// NewWriterReporter constructs a Reporter that writes to the provided io.Writer.
// Calls are serialized so parallel repository operations do not interleave lines.
func NewWriterReporter(writer io.Writer) Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return writerReporter{writer: writer, mutex: &sync.Mutex{}}
}

func (reporter writerReporter) Printf(format string, args ...any) {
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()
	fmt.Fprintf(reporter.writer, format, args...)
}
