// Package progress reports byte-level progress while a reader is
// consumed (such as WriteFile's plaintext source), wrapping
// github.com/mitchellh/ioprogress.
package progress

import (
	"io"

	"github.com/mitchellh/ioprogress"
)

// Callback is invoked with the number of bytes transferred so far and
// the total expected, letting a caller drive a progress bar or
// structured log line.
type Callback func(current, total int64)

// Reader wraps r so that reads report cumulative progress against
// total bytes to cb. Reports are throttled by ioprogress's draw
// interval (one second by default), with a final report once r is
// exhausted.
func Reader(r io.Reader, total int64, cb Callback) io.Reader {
	return &ioprogress.Reader{
		Reader: r,
		Size:   total,
		DrawFunc: func(progress, total int64) error {
			// ioprogress ends with a (-1, -1) call as its own "finish"
			// marker; it is not a progress report.
			if progress < 0 {
				return nil
			}
			cb(progress, total)
			return nil
		},
	}
}
