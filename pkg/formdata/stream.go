package formdata

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
)

// Part is one section of a multipart body. Its body can only be read until the
// stream advances to the next part.
type Part struct {
	Header textproto.MIMEHeader

	index int
	raw   *multipart.Part
	err   error
}

// Index is the zero-based position of the part in the body.
func (p *Part) Index() int {
	return p.index
}

// ContentType returns the part Content-Type header, if any.
func (p *Part) ContentType() string {
	return p.Header.Get("Content-Type")
}

// Read reads raw body bytes up to the next delimiter. Framing errors are
// reported as ErrMalformedBody.
func (p *Part) Read(b []byte) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	n, err := p.raw.Read(b)
	if err != nil && err != io.EOF {
		p.err = fmt.Errorf("%w: part %d: %w", ErrMalformedBody, p.index, err)
		return n, p.err
	}
	return n, err
}

// Err returns the framing error hit while reading the body, if any.
func (p *Part) Err() error {
	return p.err
}

// PartStream yields the parts of a multipart body in order. It is forward only:
// once Next returns, earlier parts can no longer be read.
type PartStream struct {
	reader  *multipart.Reader
	current *Part
	count   int
	err     error
}

// NewPartStream reads parts from r delimited by boundary.
func NewPartStream(r io.Reader, boundary string) *PartStream {
	return &PartStream{reader: multipart.NewReader(r, boundary)}
}

// Next skips whatever is left of the current part and returns the next one.
// It returns io.EOF after the closing delimiter. Any other error wraps
// ErrMalformedBody and is sticky.
func (s *PartStream) Next() (*Part, error) {
	if s.err != nil {
		return nil, s.err
	}

	raw, err := s.reader.NextRawPart()
	if err != nil {
		// multipart wraps a premature EOF, only a bare io.EOF is a clean end.
		if err == io.EOF {
			s.err = io.EOF
			return nil, io.EOF
		}
		if s.current != nil && s.current.err != nil {
			s.err = s.current.err
		} else {
			s.err = fmt.Errorf("%w: part %d: %w", ErrMalformedBody, s.count, err)
		}
		s.current = nil
		return nil, s.err
	}

	s.current = &Part{
		Header: raw.Header,
		index:  s.count,
		raw:    raw,
	}
	s.count++
	return s.current, nil
}

// Count returns the number of parts produced so far.
func (s *PartStream) Count() int {
	return s.count
}
