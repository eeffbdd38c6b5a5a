// Package modelfile probes model container files registered with the
// size switcher. Only the GGUF header is read; tensor payloads belong
// to the hosting runtime.
package modelfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

var ErrBadMagic = errors.New("modelfile: not a gguf file")

// Header is the fixed GGUF preamble.
type Header struct {
	Version     uint32
	TensorCount uint64
	KVCount     uint64
}

// ProbeHeader opens path and decodes the GGUF preamble.
func ProbeHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, err
	}
	defer f.Close()
	return DecodeHeader(f)
}

// DecodeHeader reads the magic and the fixed counters.
func DecodeHeader(r io.Reader) (Header, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return Header{}, fmt.Errorf("read magic: %w", err)
	}
	if string(magic[:]) != "GGUF" {
		return Header{}, ErrBadMagic
	}
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return Header{}, fmt.Errorf("read header: %w", err)
	}
	return h, nil
}
