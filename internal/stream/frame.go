package stream

import "bytes"

// frameBuffer accumulates raw body bytes and yields complete newline
// terminated frames. The unterminated tail stays buffered until the next
// push. Splitting on the '\n' byte never cuts a multi-byte UTF-8 sequence.
type frameBuffer struct {
	buf []byte
}

// push appends chunk and returns every frame it completed, in order.
func (f *frameBuffer) push(chunk []byte) []string {
	f.buf = append(f.buf, chunk...)

	var frames []string
	start := 0
	for {
		i := bytes.IndexByte(f.buf[start:], '\n')
		if i < 0 {
			break
		}
		frames = append(frames, string(f.buf[start:start+i]))
		start += i + 1
	}
	if start > 0 {
		f.buf = append(f.buf[:0], f.buf[start:]...)
	}
	return frames
}

// pending returns the buffered fragment that has no terminating newline yet.
func (f *frameBuffer) pending() string {
	return string(f.buf)
}
