package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how genome vectors are packed on disk.
type Compression byte

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", byte(c))
	}
}

func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "", "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unsupported compression: %s", name)
	}
}

var (
	ErrCorruptVector = errors.New("corrupt genome vector")
	ErrChecksum      = errors.New("genome vector checksum mismatch")
)

// Header layout: magic(4) version(1) compression(1) count(4) checksum(8).
// The checksum is xxhash64 over the uncompressed little-endian floats.
const (
	vectorMagic      = "GNV1"
	vectorVersion    = 1
	vectorHeaderSize = 18

	// maxVectorCount bounds the float count a header may claim.
	maxVectorCount = 1 << 27
	// lz4MaxRatio is the largest expansion an lz4 block can encode.
	lz4MaxRatio = 255
	// zstdSizeHint caps the preallocated zstd output buffer.
	zstdSizeHint = 1 << 20
)

var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder: %v", err))
		}
		return encoder
	},
}

var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(maxVectorCount*8),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder: %v", err))
		}
		return decoder
	},
}

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// EncodeVector packs values with the requested compression. Payloads that
// do not shrink are stored uncompressed.
func EncodeVector(values []float64, compression Compression) ([]byte, error) {
	raw := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(raw[i*8:], math.Float64bits(v))
	}

	payload, used, err := compress(raw, compression)
	if err != nil {
		return nil, err
	}

	out := make([]byte, vectorHeaderSize, vectorHeaderSize+len(payload))
	copy(out, vectorMagic)
	out[4] = vectorVersion
	out[5] = byte(used)
	binary.LittleEndian.PutUint32(out[6:], uint32(len(values)))
	binary.LittleEndian.PutUint64(out[10:], xxhash.Sum64(raw))
	return append(out, payload...), nil
}

func DecodeVector(data []byte) ([]float64, error) {
	if len(data) < vectorHeaderSize || string(data[:4]) != vectorMagic {
		return nil, fmt.Errorf("%w: bad header", ErrCorruptVector)
	}
	if data[4] != vectorVersion {
		return nil, fmt.Errorf("%w: vector version %d", ErrVersionMismatch, data[4])
	}
	compression := Compression(data[5])
	count := int(binary.LittleEndian.Uint32(data[6:]))
	checksum := binary.LittleEndian.Uint64(data[10:])
	if count > maxVectorCount {
		return nil, fmt.Errorf("%w: count %d exceeds limit", ErrCorruptVector, count)
	}

	raw, err := decompress(data[vectorHeaderSize:], compression, count*8)
	if err != nil {
		return nil, err
	}
	if len(raw) != count*8 {
		return nil, fmt.Errorf("%w: got %d bytes for %d values", ErrCorruptVector, len(raw), count)
	}
	if xxhash.Sum64(raw) != checksum {
		return nil, ErrChecksum
	}

	values := make([]float64, count)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return values, nil
}

func compress(raw []byte, compression Compression) ([]byte, Compression, error) {
	if len(raw) == 0 {
		return nil, CompressionNone, nil
	}
	switch compression {
	case CompressionNone:
		return raw, CompressionNone, nil
	case CompressionZstd:
		encoder := zstdEncoderPool.Get().(*zstd.Encoder)
		defer zstdEncoderPool.Put(encoder)
		packed := encoder.EncodeAll(raw, nil)
		if len(packed) >= len(raw) {
			return raw, CompressionNone, nil
		}
		return packed, CompressionZstd, nil
	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(raw)))
		lc := lz4CompressorPool.Get().(*lz4.Compressor)
		defer lz4CompressorPool.Put(lc)
		n, err := lc.CompressBlock(raw, dst)
		if err != nil {
			return nil, 0, err
		}
		// n == 0 means the block is incompressible.
		if n == 0 || n >= len(raw) {
			return raw, CompressionNone, nil
		}
		return dst[:n], CompressionLZ4, nil
	default:
		return nil, 0, fmt.Errorf("unsupported compression: %s", compression)
	}
}

func decompress(payload []byte, compression Compression, size int) ([]byte, error) {
	switch compression {
	case CompressionNone:
		if len(payload) != size {
			return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrCorruptVector, len(payload), size)
		}
		return payload, nil
	case CompressionZstd:
		decoder := zstdDecoderPool.Get().(*zstd.Decoder)
		defer zstdDecoderPool.Put(decoder)
		raw, err := decoder.DecodeAll(payload, make([]byte, 0, min(size, zstdSizeHint)))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCorruptVector, err)
		}
		return raw, nil
	case CompressionLZ4:
		if size > lz4MaxRatio*len(payload) {
			return nil, fmt.Errorf("%w: %d lz4 bytes cannot hold %d", ErrCorruptVector, len(payload), size)
		}
		raw := make([]byte, size)
		n, err := lz4.UncompressBlock(payload, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCorruptVector, err)
		}
		return raw[:n], nil
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorruptVector, byte(compression))
	}
}
