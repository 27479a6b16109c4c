package vmem

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
	"os"
	"strings"

	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"
)

// CompressionType represents the compression algorithm of a workload file
type CompressionType uint8

const (
	CompressionNone   CompressionType = 0
	CompressionLZ4    CompressionType = 1
	CompressionSnappy CompressionType = 2

	// CompressionBest tries every algorithm and keeps the smallest output.
	// It is never written to a file.
	CompressionBest CompressionType = 0xFF
)

// String returns the config name of the compression type
func (ct CompressionType) String() string {
	switch ct {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionSnappy:
		return "snappy"
	case CompressionBest:
		return "best"
	default:
		return fmt.Sprintf("compression(%d)", uint8(ct))
	}
}

// ParseCompressionType converts a config name to a compression type
func ParseCompressionType(name string) (CompressionType, error) {
	switch strings.ToLower(name) {
	case "none", "":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "snappy":
		return CompressionSnappy, nil
	case "best":
		return CompressionBest, nil
	default:
		return CompressionNone, ErrInvalidParameters("ParseCompressionType",
			fmt.Sprintf("unsupported compression %q (must be none, lz4, snappy, or best)", name))
	}
}

// Workload file header layout:
// [0-1]: Magic number (0x564D)
// [2]: Compression type (0=none, 1=LZ4, 2=Snappy)
// [3]: Format version
// [4-7]: Uncompressed body size
// [8-11]: Body checksum (CRC32 of the uncompressed body)
// [12+]: Body
//
// The uncompressed body is a sequence of uvarints: the process count, then
// for every process its burst count, then for every burst its length
// followed by its page ids.

const (
	WorkloadMagic      = 0x564D
	WorkloadVersion    = 1
	WorkloadHeaderSize = 12

	// Bodies larger than this are rejected when decoding
	MaxWorkloadBodySize = 1 << 30
)

// WorkloadHeader is the decoded header of a workload file
type WorkloadHeader struct {
	CompressionType  CompressionType
	Version          uint8
	UncompressedSize uint32
	CompressedSize   uint32
	Checksum         uint32
}

// GetCompressionRatio returns the compression ratio (original size / stored size)
func (h WorkloadHeader) GetCompressionRatio() float64 {
	if h.CompressedSize == 0 {
		return 1.0
	}
	return float64(h.UncompressedSize) / float64(h.CompressedSize)
}

// GetSpaceSavings returns bytes saved by compression
func (h WorkloadHeader) GetSpaceSavings() int {
	return int(h.UncompressedSize) - int(h.CompressedSize)
}

// marshalWorkload writes the uncompressed body
func marshalWorkload(processes []*Process) []byte {
	buf := make([]byte, 0, 64)
	buf = binary.AppendUvarint(buf, uint64(len(processes)))
	for _, p := range processes {
		bursts := p.Bursts()
		buf = binary.AppendUvarint(buf, uint64(len(bursts)))
		for _, burst := range bursts {
			buf = binary.AppendUvarint(buf, uint64(len(burst)))
			for _, page := range burst {
				buf = binary.AppendUvarint(buf, uint64(page))
			}
		}
	}
	return buf
}

// unmarshalWorkload parses an uncompressed body
func unmarshalWorkload(body []byte) ([]*Process, error) {
	r := bytes.NewReader(body)

	// Every element takes at least one byte, so a count larger than the
	// remaining input is corrupt.
	readCount := func(what string) (int, error) {
		n, err := binary.ReadUvarint(r)
		if err != nil {
			return 0, ErrWorkloadCorrupted("DecodeWorkload", fmt.Sprintf("truncated %s count", what))
		}
		if n > uint64(r.Len()) {
			return 0, ErrWorkloadCorrupted("DecodeWorkload",
				fmt.Sprintf("%s count %d exceeds remaining %d bytes", what, n, r.Len()))
		}
		return int(n), nil
	}

	count, err := readCount("process")
	if err != nil {
		return nil, err
	}
	processes := make([]*Process, count)
	for i := range processes {
		burstCount, err := readCount("burst")
		if err != nil {
			return nil, err
		}
		bursts := make([]Burst, burstCount)
		for b := range bursts {
			length, err := readCount("reference")
			if err != nil {
				return nil, err
			}
			burst := make(Burst, length)
			for j := range burst {
				page, err := binary.ReadUvarint(r)
				if err != nil {
					return nil, ErrWorkloadCorrupted("DecodeWorkload", "truncated page id")
				}
				if page > math.MaxUint32 {
					return nil, ErrWorkloadCorrupted("DecodeWorkload",
						fmt.Sprintf("page id %d out of range", page))
				}
				burst[j] = PageID(page)
			}
			bursts[b] = burst
		}
		processes[i] = NewProcess(bursts)
	}

	if r.Len() != 0 {
		return nil, ErrWorkloadCorrupted("DecodeWorkload",
			fmt.Sprintf("%d trailing bytes after last process", r.Len()))
	}
	return processes, nil
}

// compressBody compresses body with the given algorithm. It falls back to
// no compression when the output would not be smaller.
func compressBody(body []byte, ct CompressionType) ([]byte, CompressionType, error) {
	var compressed []byte

	switch ct {
	case CompressionNone:
		return body, CompressionNone, nil

	case CompressionLZ4:
		compressed = make([]byte, lz4.CompressBlockBound(len(body)))
		n, err := lz4.CompressBlock(body, compressed, nil)
		if err != nil {
			return nil, ct, fmt.Errorf("LZ4 compression failed: %w", err)
		}
		// n is 0 when the block is incompressible
		if n == 0 {
			return body, CompressionNone, nil
		}
		compressed = compressed[:n]

	case CompressionSnappy:
		compressed = snappy.Encode(nil, body)

	case CompressionBest:
		return ChooseBestCompression(body)

	default:
		return nil, ct, fmt.Errorf("unsupported compression type: %d", ct)
	}

	if len(compressed) >= len(body) {
		return body, CompressionNone, nil
	}
	return compressed, ct, nil
}

// decompressBody reverses compressBody
func decompressBody(data []byte, h WorkloadHeader) ([]byte, error) {
	switch h.CompressionType {
	case CompressionNone:
		return data, nil

	case CompressionLZ4:
		body := make([]byte, h.UncompressedSize)
		n, err := lz4.UncompressBlock(data, body)
		if err != nil {
			return nil, fmt.Errorf("LZ4 decompression failed: %w", err)
		}
		if n != int(h.UncompressedSize) {
			return nil, fmt.Errorf("LZ4 decompression size mismatch: got %d, expected %d", n, h.UncompressedSize)
		}
		return body, nil

	case CompressionSnappy:
		body, err := snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("snappy decompression failed: %w", err)
		}
		if len(body) != int(h.UncompressedSize) {
			return nil, fmt.Errorf("snappy decompression size mismatch: got %d, expected %d", len(body), h.UncompressedSize)
		}
		return body, nil

	default:
		return nil, fmt.Errorf("unsupported compression type: %d", h.CompressionType)
	}
}

// ChooseBestCompression tries all algorithms and returns the smallest output
func ChooseBestCompression(body []byte) ([]byte, CompressionType, error) {
	lz4Body, lz4Type, err := compressBody(body, CompressionLZ4)
	if err != nil {
		return nil, CompressionNone, err
	}

	snappyBody, snappyType, err := compressBody(body, CompressionSnappy)
	if err != nil {
		return nil, CompressionNone, err
	}

	if len(lz4Body) < len(snappyBody) {
		return lz4Body, lz4Type, nil
	}
	return snappyBody, snappyType, nil
}

// EncodeWorkload serializes processes into a workload file image
func EncodeWorkload(processes []*Process, ct CompressionType) ([]byte, error) {
	body := marshalWorkload(processes)
	if len(body) > MaxWorkloadBodySize {
		return nil, ErrInvalidParameters("EncodeWorkload",
			fmt.Sprintf("workload too large: %d bytes (max %d)", len(body), MaxWorkloadBodySize))
	}

	stored, used, err := compressBody(body, ct)
	if err != nil {
		return nil, NewSimulationError(ErrCodeInternal, "EncodeWorkload", "compression failed", err)
	}

	buf := make([]byte, WorkloadHeaderSize+len(stored))
	binary.LittleEndian.PutUint16(buf[0:2], WorkloadMagic)
	buf[2] = uint8(used)
	buf[3] = WorkloadVersion
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(body)))
	binary.LittleEndian.PutUint32(buf[8:12], crc32.ChecksumIEEE(body))
	copy(buf[WorkloadHeaderSize:], stored)

	return buf, nil
}

// ReadWorkloadHeader parses and checks the header of a workload file image
func ReadWorkloadHeader(data []byte) (WorkloadHeader, error) {
	if len(data) < WorkloadHeaderSize {
		return WorkloadHeader{}, ErrWorkloadCorrupted("ReadWorkloadHeader",
			fmt.Sprintf("data too short for workload header: %d bytes", len(data)))
	}

	magic := binary.LittleEndian.Uint16(data[0:2])
	if magic != WorkloadMagic {
		return WorkloadHeader{}, ErrWorkloadCorrupted("ReadWorkloadHeader",
			fmt.Sprintf("invalid magic number: got %04x, expected %04x", magic, WorkloadMagic))
	}

	h := WorkloadHeader{
		CompressionType:  CompressionType(data[2]),
		Version:          data[3],
		UncompressedSize: binary.LittleEndian.Uint32(data[4:8]),
		CompressedSize:   uint32(len(data) - WorkloadHeaderSize),
		Checksum:         binary.LittleEndian.Uint32(data[8:12]),
	}
	if h.Version != WorkloadVersion {
		return WorkloadHeader{}, ErrWorkloadCorrupted("ReadWorkloadHeader",
			fmt.Sprintf("unsupported format version %d", h.Version))
	}
	if h.UncompressedSize > MaxWorkloadBodySize {
		return WorkloadHeader{}, ErrWorkloadCorrupted("ReadWorkloadHeader",
			fmt.Sprintf("body size %d exceeds limit", h.UncompressedSize))
	}
	return h, nil
}

// DecodeWorkload parses a workload file image produced by EncodeWorkload
func DecodeWorkload(data []byte) ([]*Process, error) {
	h, err := ReadWorkloadHeader(data)
	if err != nil {
		return nil, err
	}

	body, err := decompressBody(data[WorkloadHeaderSize:], h)
	if err != nil {
		return nil, ErrWorkloadCorrupted("DecodeWorkload", err.Error())
	}

	checksum := crc32.ChecksumIEEE(body)
	if checksum != h.Checksum {
		return nil, ErrWorkloadCorrupted("DecodeWorkload",
			fmt.Sprintf("checksum mismatch: got %08x, expected %08x", checksum, h.Checksum))
	}

	return unmarshalWorkload(body)
}

// SaveWorkload writes processes to a workload file
func SaveWorkload(path string, processes []*Process, ct CompressionType) (WorkloadHeader, error) {
	data, err := EncodeWorkload(processes, ct)
	if err != nil {
		return WorkloadHeader{}, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return WorkloadHeader{}, ErrWorkloadIO("SaveWorkload", err)
	}
	return ReadWorkloadHeader(data)
}

// LoadWorkload reads a workload file
func LoadWorkload(path string) ([]*Process, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrWorkloadIO("LoadWorkload", err)
	}
	return DecodeWorkload(data)
}
