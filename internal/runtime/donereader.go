package runtime

import (
	"io"
	"sync"
)

// Reader that reports when the stream it wraps has been drained.
//
// Exec uses this around stdin tar streams: the shim keeps the stdin FIFO
// open on its own, so the exec path watches done to know when to close the
// container's stdin. done is closed at most once, on the first [io.EOF].
type doneReader struct {
	r    io.Reader
	once sync.Once
	done chan struct{}
}

func newDoneReader(r io.Reader) *doneReader {
	return &doneReader{r: r, done: make(chan struct{})}
}

// Reads from the wrapped stream, closing done on the first [io.EOF].
//
// Errors other than EOF pass through and leave done open.
func (d *doneReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if err == io.EOF {
		d.once.Do(func() { close(d.done) })
	}
	return n, err
}
