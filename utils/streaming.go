package utils

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// Buffers above this size are dropped instead of pooled so one huge image
// cannot pin memory for the life of the process.
const maxPooledBuffer = 8 << 20

var bufPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

// AcquireBuffer returns an empty buffer from the pool.
func AcquireBuffer() *bytes.Buffer {
	return bufPool.Get().(*bytes.Buffer)
}

// ReleaseBuffer resets b and returns it to the pool.  Callers must not use b
// after this call.
func ReleaseBuffer(b *bytes.Buffer) {
	if b == nil || b.Cap() > maxPooledBuffer {
		return
	}
	b.Reset()
	bufPool.Put(b)
}

// DrainReader reads r to completion into a pooled buffer, checking ctx
// between chunks.  Pass the buffer back with ReleaseBuffer when done.
func DrainReader(ctx context.Context, r io.Reader, chunkSize int) (*bytes.Buffer, error) {
	if chunkSize <= 0 {
		chunkSize = 32 << 10
	}
	buf := AcquireBuffer()
	chunk := make([]byte, chunkSize)
	for {
		select {
		case <-ctx.Done():
			ReleaseBuffer(buf)
			return nil, ctx.Err()
		default:
		}
		n, err := r.Read(chunk)
		buf.Write(chunk[:n])
		switch {
		case err == io.EOF:
			return buf, nil
		case err != nil:
			ReleaseBuffer(buf)
			return nil, err
		}
	}
}

// LimitReader wraps r so that reading more than max bytes fails with
// io.ErrUnexpectedEOF.  A source of exactly max bytes still terminates with
// a clean EOF.  max <= 0 disables the limit.
func LimitReader(r io.Reader, max int64) io.Reader {
	if max <= 0 {
		return r
	}
	return &cappedReader{r: r, remain: max}
}

type cappedReader struct {
	r      io.Reader
	remain int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.remain <= 0 {
		var probe [1]byte
		if n, err := c.r.Read(probe[:]); n == 0 && err == io.EOF {
			return 0, io.EOF
		}
		return 0, io.ErrUnexpectedEOF
	}
	if int64(len(p)) > c.remain {
		p = p[:c.remain]
	}
	n, err := c.r.Read(p)
	c.remain -= int64(n)
	return n, err
}
