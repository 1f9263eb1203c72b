package flat

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	magic         = "WSVI"
	formatVersion = 1
	headerSize    = 4 + 4 + 4 + 8
)

// ErrCorrupt is returned when a serialised index cannot be decoded.
var ErrCorrupt = errors.New("corrupt vector index")

// WriteTo serialises the index in the package's binary format.
func (idx *Index) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)

	header := make([]byte, headerSize)
	copy(header, magic)
	binary.LittleEndian.PutUint32(header[4:], formatVersion)
	binary.LittleEndian.PutUint32(header[8:], uint32(idx.dims))
	binary.LittleEndian.PutUint64(header[12:], uint64(idx.n))
	if _, err := bw.Write(header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	written := int64(headerSize)
	var buf [4]byte
	for _, f := range idx.data {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(f))
		if _, err := bw.Write(buf[:]); err != nil {
			return written, fmt.Errorf("write vectors: %w", err)
		}
		written += 4
	}
	if err := bw.Flush(); err != nil {
		return written, fmt.Errorf("flush: %w", err)
	}
	return written, nil
}

// Read decodes an index written by WriteTo.
func Read(r io.Reader) (*Index, error) {
	br := bufio.NewReader(r)

	header := make([]byte, headerSize)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrCorrupt, err)
	}
	if string(header[:4]) != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, header[:4])
	}
	if v := binary.LittleEndian.Uint32(header[4:]); v != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, v)
	}
	dims := int(binary.LittleEndian.Uint32(header[8:]))
	count := binary.LittleEndian.Uint64(header[12:])

	if (count == 0) != (dims == 0) {
		return nil, fmt.Errorf("%w: %d vectors of %d dimensions", ErrCorrupt, count, dims)
	}
	if count > math.MaxInt32 || uint64(dims)*count > math.MaxInt32 {
		return nil, fmt.Errorf("%w: index too large", ErrCorrupt)
	}

	n := int(count)
	data := make([]float32, n*dims)
	var buf [4]byte
	for i := range data {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return nil, fmt.Errorf("%w: read vectors: %w", ErrCorrupt, err)
		}
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[:]))
	}
	if _, err := br.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrCorrupt)
	}

	return &Index{dims: dims, n: n, data: data}, nil
}
