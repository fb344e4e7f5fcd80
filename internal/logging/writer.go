package logging

import (
	"io"

	"go.uber.org/multierr"
)

// FanOutWriter duplicates log output to several destinations. A failing
// destination does not stop the others; its error is merged into the result.
type FanOutWriter struct {
	writers []io.Writer
}

func NewFanOutWriter(writers ...io.Writer) *FanOutWriter {
	fw := &FanOutWriter{}
	for _, w := range writers {
		if w != nil {
			fw.writers = append(fw.writers, w)
		}
	}
	return fw
}

func (fw *FanOutWriter) Write(p []byte) (int, error) {
	var err error
	written := 0
	for _, w := range fw.writers {
		n, werr := w.Write(p)
		if werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		if n > written {
			written = n
		}
	}
	return written, err
}
