package vxl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"

	"github.com/klauspost/compress/gzip"
)

// Magic opens every VXL1 artifact: 0x56 0x58 0x4C 0x31.
const Magic = "VXL1"

// Version is the single supported format version. Decode rejects anything
// else instead of converting.
const Version = 1

var (
	ErrBadMagic           = errors.New("vxl: bad magic")
	ErrUnsupportedVersion = errors.New("vxl: unsupported version")
	ErrTruncated          = errors.New("vxl: truncated index data")
)

// Encode serializes the object as a VXL1 artifact: magic, version byte,
// three little-endian uint32 dimensions, a uint16 palette length, the RGBA
// palette, the dense index buffer, the whole stream gzip-compressed.
// Placement transforms are not part of the artifact.
func Encode(obj *VoxelObject) ([]byte, error) {
	if len(obj.Palette) > MaxPaletteSize {
		return nil, fmt.Errorf("vxl: palette has %d entries, limit is %d", len(obj.Palette), MaxPaletteSize)
	}
	if len(obj.Indices) != obj.Volume() {
		return nil, fmt.Errorf("vxl: index buffer has %d bytes, want %d", len(obj.Indices), obj.Volume())
	}
	return gzipCompress(encodeRaw(obj)), nil
}

func encodeRaw(obj *VoxelObject) []byte {
	var buf bytes.Buffer
	buf.WriteString(Magic)
	_ = binary.Write(&buf, binary.LittleEndian, uint8(Version))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(obj.Dims[0]))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(obj.Dims[1]))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(obj.Dims[2]))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(obj.Palette)))
	for _, c := range obj.Palette {
		buf.Write([]byte{c.R, c.G, c.B, c.A})
	}
	buf.Write(obj.Indices)
	return buf.Bytes()
}

// Decode parses a VXL1 artifact back into a VoxelObject. The input is
// gunzipped only when it starts with the gzip magic, so transport layers
// that already decompressed the stream keep working. Failures are explicit:
// bad magic, unsupported version, or truncated data; no partial object is
// ever returned. Trailing bytes past the index buffer are ignored. The
// returned object carries identity transforms.
func Decode(data []byte) (*VoxelObject, error) {
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		var err error
		data, err = gzipDecompress(data)
		if err != nil {
			return nil, err
		}
	}
	if len(data) < 4 || string(data[:4]) != Magic {
		return nil, ErrBadMagic
	}
	r := bytes.NewReader(data[4:])
	var ver uint8
	if err := binary.Read(r, binary.LittleEndian, &ver); err != nil {
		return nil, fmt.Errorf("%w: missing version byte", ErrTruncated)
	}
	if ver != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, ver)
	}
	var dx, dy, dz uint32
	var palLen uint16
	if err := binary.Read(r, binary.LittleEndian, &dx); err != nil {
		return nil, fmt.Errorf("%w: header", ErrTruncated)
	}
	if err := binary.Read(r, binary.LittleEndian, &dy); err != nil {
		return nil, fmt.Errorf("%w: header", ErrTruncated)
	}
	if err := binary.Read(r, binary.LittleEndian, &dz); err != nil {
		return nil, fmt.Errorf("%w: header", ErrTruncated)
	}
	if err := binary.Read(r, binary.LittleEndian, &palLen); err != nil {
		return nil, fmt.Errorf("%w: header", ErrTruncated)
	}
	if palLen > MaxPaletteSize {
		return nil, fmt.Errorf("vxl: palette length %d exceeds %d", palLen, MaxPaletteSize)
	}

	palette := make([]Color, palLen)
	rgba := make([]byte, 4)
	for i := range palette {
		if _, err := io.ReadFull(r, rgba); err != nil {
			return nil, fmt.Errorf("%w: palette", ErrTruncated)
		}
		palette[i] = Color{rgba[0], rgba[1], rgba[2], rgba[3]}
	}

	vol, ok := denseVolume(dx, dy, dz)
	if !ok {
		return nil, fmt.Errorf("vxl: implausible dimensions %dx%dx%d", dx, dy, dz)
	}
	if uint64(r.Len()) < vol {
		return nil, fmt.Errorf("%w: have %d index bytes, want %d", ErrTruncated, r.Len(), vol)
	}
	indices := make([]uint8, vol)
	if _, err := io.ReadFull(r, indices); err != nil {
		return nil, fmt.Errorf("%w: indices", ErrTruncated)
	}

	return &VoxelObject{
		Dims:     [3]int{int(dx), int(dy), int(dz)},
		Palette:  palette,
		Indices:  indices,
		Model:    IdentityMatrix(),
		InvModel: IdentityMatrix(),
	}, nil
}

// denseVolume multiplies three dimensions without wrapping; ok is false when
// the product does not fit in a uint64. Wrapping here would let a crafted
// header pass the index-length check with a tiny payload.
func denseVolume(dx, dy, dz uint32) (uint64, bool) {
	hi, v := bits.Mul64(uint64(dx)*uint64(dy), uint64(dz))
	return v, hi == 0
}

func gzipCompress(b []byte) []byte {
	var buf bytes.Buffer
	zw, _ := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	_, _ = zw.Write(b)
	_ = zw.Close()
	return buf.Bytes()
}

func gzipDecompress(b []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
