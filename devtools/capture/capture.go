// Package capture opens recorded DevTools protocol traffic. Captures may be
// snappy-framed or zstd compressed and may be UTF-16 text (a PowerShell
// redirect writes UTF-16LE with a BOM); readers hide all of that.
package capture

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/xerrors"
)

// Compression identifies how a capture stream is compressed.
type Compression int

const (
	None Compression = iota
	Snappy
	Zstd
)

func (c Compression) String() string {
	switch c {
	case Snappy:
		return "snappy"
	case Zstd:
		return "zstd"
	}
	return "none"
}

// ParseCompression maps a flag value to a Compression.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return None, nil
	case "snappy":
		return Snappy, nil
	case "zstd":
		return Zstd, nil
	}
	return None, xerrors.Errorf("unknown compression %q", name)
}

var (
	zstdMagic   = []byte{0x28, 0xb5, 0x2f, 0xfd}
	snappyMagic = []byte("\xff\x06\x00\x00sNaPpY")
)

// Detect identifies the compression from the first bytes of a stream.
func Detect(header []byte) Compression {
	switch {
	case bytes.HasPrefix(header, snappyMagic):
		return Snappy
	case bytes.HasPrefix(header, zstdMagic):
		return Zstd
	}
	return None
}

// Reader yields the UTF-8 text of a capture stream.
type Reader struct {
	io.Reader
	Compression Compression

	closers []func() error
}

// NewReader sniffs r for compression and a byte order mark.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(len(snappyMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, xerrors.Errorf("failed to read capture header: %w", err)
	}

	cr := &Reader{Compression: Detect(header)}
	var src io.Reader = br
	switch cr.Compression {
	case Snappy:
		src = snappy.NewReader(br)
	case Zstd:
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, xerrors.Errorf("failed to create zstd reader: %w", err)
		}
		cr.closers = append(cr.closers, func() error {
			dec.Close()
			return nil
		})
		src = dec
	}
	cr.Reader = transform.NewReader(src, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	return cr, nil
}

// Open opens the capture file at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, xerrors.Errorf("%s: %w", path, err)
	}
	r.closers = append(r.closers, f.Close)
	return r, nil
}

// Close releases the decompressor and the underlying file, if any.
func (r *Reader) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	r.closers = nil
	return first
}

// NewWriter compresses everything written to it into w. Closing the writer
// flushes the compressor but does not close w.
func NewWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case Zstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return nil, xerrors.Errorf("failed to create zstd writer: %w", err)
		}
		return enc, nil
	}
	return nopWriteCloser{w}, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
