package memimage

import (
	"encoding/binary"
	"fmt"
	"io"
)

// reader decodes fixed-width integers from an io.ReaderAt.
type reader struct {
	r     io.ReaderAt
	order binary.ByteOrder
}

func newReader(r io.ReaderAt, order binary.ByteOrder) *reader {
	return &reader{r: r, order: order}
}

// Bytes reads exactly n bytes at addr.
func (r *reader) Bytes(addr uint64, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := r.r.ReadAt(buf, int64(addr)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Uint reads a 4- or 8-byte unsigned integer at addr.
func (r *reader) Uint(addr uint64, size int) (uint64, error) {
	buf, err := r.Bytes(addr, size)
	if err != nil {
		return 0, err
	}
	switch size {
	case 4:
		return uint64(r.order.Uint32(buf)), nil
	case 8:
		return r.order.Uint64(buf), nil
	default:
		return 0, fmt.Errorf("memimage: unsupported width %d", size)
	}
}
