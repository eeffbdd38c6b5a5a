package kipepeo

import (
	"github.com/kipepeo-ai/KipepeoAI/internal/quant"
)

// Tensor type-trait registration: the hosting LLM runtime advertises
// new tensor element kinds through its own trait table; this file
// provides the two AfricaQuant kinds in a registry-neutral shape.

// QuantizeFunc encodes weights into a packed stream plus metadata.
type QuantizeFunc func(weights []float32, out []byte, meta []quant.Meta, block uint32) error

// DequantizeFunc inverts QuantizeFunc.
type DequantizeFunc func(in []byte, out []float32, meta []quant.Meta, block uint32) error

// TensorType describes one quantized element kind: the block
// descriptor plus the codec entry points.
type TensorType struct {
	Name          string
	BitsPerWeight float32
	BlockSize     uint32
	BytesPerBlock uint32
	Codebook      []float32
	Quantize      QuantizeFunc
	Dequantize    DequantizeFunc
}

// TypeRegistry is the hosting runtime's trait table.
type TypeRegistry interface {
	RegisterTensorType(t TensorType) error
}

// TensorTypes returns the ternary-1.28 and quaternary-1.58 element
// kinds backed by a shared codec instance. The block size must come
// from the supported set.
func TensorTypes(block uint32) ([]TensorType, error) {
	if err := quant.CheckBlockSize(block); err != nil {
		return nil, err
	}
	q := quant.New()
	bytesPerBlock := uint32((int(block)*2 + 7) / 8)

	return []TensorType{
		{
			Name:          "africaquant_ternary_1_28",
			BitsPerWeight: 1.28,
			BlockSize:     block,
			BytesPerBlock: bytesPerBlock,
			Codebook:      []float32{-1, 0, 1},
			Quantize: func(w []float32, out []byte, meta []quant.Meta, b uint32) error {
				return q.QuantizeTernary(w, out, meta, b, nil)
			},
			Dequantize: func(in []byte, out []float32, meta []quant.Meta, b uint32) error {
				return q.DequantizeTernary(in, out, meta, b)
			},
		},
		{
			Name:          "africaquant_quaternary_1_58",
			BitsPerWeight: 1.58,
			BlockSize:     block,
			BytesPerBlock: bytesPerBlock,
			Codebook:      []float32{-1.5, -0.5, 0.5, 1.5},
			Quantize: func(w []float32, out []byte, meta []quant.Meta, b uint32) error {
				return q.QuantizeQuaternary(w, out, meta, b, nil)
			},
			Dequantize: func(in []byte, out []float32, meta []quant.Meta, b uint32) error {
				return q.DequantizeQuaternary(in, out, meta, b)
			},
		},
	}, nil
}

// RegisterTensorTypes advertises both AfricaQuant element kinds to the
// hosting runtime's registry.
func RegisterTensorTypes(reg TypeRegistry, block uint32) error {
	types, err := TensorTypes(block)
	if err != nil {
		return err
	}
	for _, t := range types {
		if err := reg.RegisterTensorType(t); err != nil {
			return err
		}
	}
	return nil
}
