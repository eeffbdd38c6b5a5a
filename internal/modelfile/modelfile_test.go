package modelfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func ggufBytes(version uint32, tensors, kv uint64) []byte {
	var buf bytes.Buffer
	buf.WriteString("GGUF")
	binary.Write(&buf, binary.LittleEndian, version)
	binary.Write(&buf, binary.LittleEndian, tensors)
	binary.Write(&buf, binary.LittleEndian, kv)
	return buf.Bytes()
}

func TestDecodeHeader(t *testing.T) {
	h, err := DecodeHeader(bytes.NewReader(ggufBytes(3, 291, 24)))
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if h.Version != 3 || h.TensorCount != 291 || h.KVCount != 24 {
		t.Fatalf("header = %+v", h)
	}
}

func TestDecodeHeaderBadMagic(t *testing.T) {
	_, err := DecodeHeader(bytes.NewReader([]byte("GGML0123456789abcdef0123")))
	if !errors.Is(err, ErrBadMagic) {
		t.Fatalf("err = %v, want ErrBadMagic", err)
	}
}

func TestDecodeHeaderTruncated(t *testing.T) {
	if _, err := DecodeHeader(bytes.NewReader([]byte("GG"))); err == nil {
		t.Fatal("truncated magic accepted")
	}
	if _, err := DecodeHeader(bytes.NewReader([]byte("GGUF\x03\x00"))); err == nil {
		t.Fatal("truncated header accepted")
	}
}

func TestProbeHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gguf")
	if err := os.WriteFile(path, ggufBytes(2, 7, 3), 0o644); err != nil {
		t.Fatal(err)
	}
	h, err := ProbeHeader(path)
	if err != nil {
		t.Fatalf("ProbeHeader: %v", err)
	}
	if h.Version != 2 || h.TensorCount != 7 {
		t.Fatalf("header = %+v", h)
	}
}
