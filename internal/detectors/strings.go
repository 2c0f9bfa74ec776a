package detectors

import (
	"bufio"
	"io"
)

// StringScanner extracts printable-ASCII runs from a byte stream, the way
// strings(1) does. It reads incrementally so multi-hundred-MB binaries are
// never held in memory. The sequence is finite and not restartable; re-reading
// requires a new scanner.
type StringScanner struct {
	r      *bufio.Reader
	minLen int
	buf    []byte
	err    error
	done   bool
}

// NewStringScanner returns a scanner yielding runs of at least minLen
// printable characters.
func NewStringScanner(r io.Reader, minLen int) *StringScanner {
	return &StringScanner{
		r:      bufio.NewReaderSize(r, 64*1024),
		minLen: minLen,
		buf:    make([]byte, 0, 256),
	}
}

// Next returns the next candidate string. The second result is false once the
// stream is exhausted.
func (s *StringScanner) Next() (string, bool) {
	if s.done {
		return "", false
	}
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			s.done = true
			if err != io.EOF {
				s.err = err
			}
			// Trailing run at end of stream.
			if len(s.buf) >= s.minLen {
				out := string(s.buf)
				s.buf = s.buf[:0]
				return out, true
			}
			return "", false
		}
		if b >= 32 && b <= 126 {
			s.buf = append(s.buf, b)
			continue
		}
		if len(s.buf) >= s.minLen {
			out := string(s.buf)
			s.buf = s.buf[:0]
			return out, true
		}
		s.buf = s.buf[:0]
	}
}

// Err reports a non-EOF read error, if any occurred.
func (s *StringScanner) Err() error {
	return s.err
}
