package store

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"errors"
	"io"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/xerrors"
)

// Format identifies the on-disk compression framing used for a stored
// object.
type Format int8

const (
	// FormatZlib is the legacy, Git-compatible zlib/DEFLATE framing.
	// The Git store always uses this format.
	FormatZlib Format = 1
	// FormatZstd is a raw Zstandard frame. This is the default format
	// for new AVC repositories.
	FormatZstd Format = 2
)

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// ErrUnknownFormat is returned when the compressed bytes match neither
// the zstd magic nor a zlib header.
var ErrUnknownFormat = errors.New("store: unrecognized compression format")

// compress wraps data in the given Format at the given level. Both
// codecs receive the level; zstd maps it onto its speed presets. Level 0
// (or below) is the fast setting: zlib then writes uncompressed (stored)
// blocks, while zstd uses its fastest preset, which still compresses.
func compress(data []byte, format Format, level int) ([]byte, error) {
	switch format {
	case FormatZlib:
		return compressZlib(data, level)
	case FormatZstd:
		return compressZstd(data, level)
	default:
		return nil, xerrors.Errorf("store: unsupported format %d", format)
	}
}

func compressZlib(data []byte, level int) (out []byte, err error) {
	if level <= 0 {
		level = zlib.NoCompression
	}
	buf := new(bytes.Buffer)
	w, err := zlib.NewWriterLevel(buf, level)
	if err != nil {
		return nil, xerrors.Errorf("could not create zlib writer: %w", err)
	}
	if _, err = w.Write(data); err != nil {
		_ = w.Close()
		return nil, xerrors.Errorf("could not write zlib frame: %w", err)
	}
	if err = w.Close(); err != nil {
		return nil, xerrors.Errorf("could not close zlib frame: %w", err)
	}
	return buf.Bytes(), nil
}

func compressZstd(data []byte, level int) (out []byte, err error) {
	zlevel := zstd.SpeedDefault
	switch {
	case level <= 0:
		zlevel = zstd.SpeedFastest
	case level >= 6:
		zlevel = zstd.SpeedBestCompression
	}

	buf := new(bytes.Buffer)
	w, err := zstd.NewWriter(buf, zstd.WithEncoderLevel(zlevel))
	if err != nil {
		return nil, xerrors.Errorf("could not create zstd writer: %w", err)
	}
	if _, err = w.Write(data); err != nil {
		_ = w.Close()
		return nil, xerrors.Errorf("could not write zstd frame: %w", err)
	}
	if err = w.Close(); err != nil {
		return nil, xerrors.Errorf("could not close zstd frame: %w", err)
	}
	return buf.Bytes(), nil
}

// decompress reads a framed object from r, auto-detecting whether it was
// written as zlib or zstd by peeking at the leading bytes.
func decompress(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err != nil && !xerrors.Is(err, io.EOF) {
		return nil, xerrors.Errorf("could not peek compressed object: %w", err)
	}

	switch {
	case bytes.Equal(head, zstdMagic):
		return decompressZstd(br)
	case len(head) >= 2 && isZlibHeader(head[0], head[1]):
		return decompressZlib(br)
	default:
		return nil, ErrUnknownFormat
	}
}

// isZlibHeader checks the 2-byte zlib header: the compression method
// nibble (cmf & 0x0f) must be 8 (DEFLATE), and the header must be a
// multiple of 31 when read as a big-endian uint16 (the check byte).
func isZlibHeader(cmf, flg byte) bool {
	if cmf&0x0f != 0x08 {
		return false
	}
	return (uint16(cmf)*256+uint16(flg))%31 == 0
}

func decompressZlib(r io.Reader) (data []byte, err error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, xerrors.Errorf("could not open zlib frame: %w", err)
	}
	defer func() {
		if cerr := zr.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	data, err = io.ReadAll(zr)
	if err != nil {
		return nil, xerrors.Errorf("could not read zlib frame: %w", err)
	}
	return data, nil
}

func decompressZstd(r io.Reader) ([]byte, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, xerrors.Errorf("could not open zstd frame: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, xerrors.Errorf("could not read zstd frame: %w", err)
	}
	return data, nil
}
