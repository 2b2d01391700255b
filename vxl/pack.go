package vxl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
)

// PackCompression selects the compression applied to the pack content
// section as a whole.
type PackCompression uint8

const (
	PackCompNone PackCompression = 0
	PackCompZstd PackCompression = 1
)

const (
	packMagic   = "VXLPACK\x00"
	packVersion = 1
)

// ErrPackChecksum reports a pack entry whose index data does not hash to the
// recorded checksum.
var ErrPackChecksum = errors.New("vxl: pack entry checksum mismatch")

// PackEntry is one named voxel object inside a pack.
type PackEntry struct {
	Name   string
	Object *VoxelObject
}

// Pack bundles several voxel objects into a single artifact, typically one
// whole scene. Unlike the single-object VXL1 stream, entries store their
// index buffers bit-packed at the minimum width the palette needs, and each
// carries an xxhash64 checksum so corruption is detected at unpack time.
type Pack struct {
	Entries []PackEntry
}

// indexBits returns the bit width needed to address every palette entry.
func indexBits(paletteLen int) uint8 {
	b := bits.Len(uint(paletteLen - 1))
	if b == 0 {
		b = 1
	}
	return uint8(b)
}

// Marshal encodes the pack: 8-byte magic, version byte, compression byte,
// then the (optionally zstd-compressed) content section with all entries.
func (p *Pack) Marshal(comp PackCompression) ([]byte, error) {
	var content bytes.Buffer
	_ = binary.Write(&content, binary.LittleEndian, uint32(len(p.Entries)))
	for _, e := range p.Entries {
		if err := writePackEntry(&content, e); err != nil {
			return nil, err
		}
	}

	var finalContent []byte
	switch comp {
	case PackCompNone:
		finalContent = content.Bytes()
	case PackCompZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		finalContent = enc.EncodeAll(content.Bytes(), nil)
		_ = enc.Close()
	default:
		return nil, fmt.Errorf("vxl: unsupported pack compression: %d", comp)
	}

	var out bytes.Buffer
	out.WriteString(packMagic)
	_ = binary.Write(&out, binary.LittleEndian, uint8(packVersion))
	_ = binary.Write(&out, binary.LittleEndian, uint8(comp))
	_, _ = out.Write(finalContent)
	return out.Bytes(), nil
}

func writePackEntry(w *bytes.Buffer, e PackEntry) error {
	obj := e.Object
	nb := []byte(e.Name)
	if len(nb) > 0xFFFF {
		return fmt.Errorf("vxl: pack entry name too long: %s", e.Name)
	}
	if len(obj.Palette) == 0 || len(obj.Palette) > MaxPaletteSize {
		return fmt.Errorf("vxl: pack entry %s: palette has %d entries, want 1 to %d", e.Name, len(obj.Palette), MaxPaletteSize)
	}
	if len(obj.Indices) != obj.Volume() {
		return fmt.Errorf("vxl: pack entry %s: index buffer has %d bytes, want %d", e.Name, len(obj.Indices), obj.Volume())
	}

	_ = binary.Write(w, binary.LittleEndian, uint16(len(nb)))
	_, _ = w.Write(nb)
	_ = binary.Write(w, binary.LittleEndian, uint32(obj.Dims[0]))
	_ = binary.Write(w, binary.LittleEndian, uint32(obj.Dims[1]))
	_ = binary.Write(w, binary.LittleEndian, uint32(obj.Dims[2]))
	_ = binary.Write(w, binary.LittleEndian, uint16(len(obj.Palette)))
	for _, c := range obj.Palette {
		w.Write([]byte{c.R, c.G, c.B, c.A})
	}

	bpp := indexBits(len(obj.Palette))
	_ = binary.Write(w, binary.LittleEndian, bpp)
	_ = binary.Write(w, binary.LittleEndian, xxhash.Sum64(obj.Indices))

	bw := newBitWriter((obj.Volume()*int(bpp) + 7) / 8)
	for _, v := range obj.Indices {
		bw.writeBits(uint64(v), bpp)
	}
	_, _ = w.Write(bw.bytes())
	return nil
}

// UnmarshalPack parses a pack artifact and reports the compression it used.
// Every entry's index checksum is verified; a mismatch fails the whole
// unpack with ErrPackChecksum.
func UnmarshalPack(data []byte) (*Pack, PackCompression, error) {
	if len(data) < len(packMagic)+2 || string(data[:len(packMagic)]) != packMagic {
		return nil, 0, errors.New("vxl: not a valid pack")
	}
	version := data[len(packMagic)]
	if version != packVersion {
		return nil, 0, fmt.Errorf("vxl: unsupported pack version: %d", version)
	}
	comp := PackCompression(data[len(packMagic)+1])
	content := data[len(packMagic)+2:]

	switch comp {
	case PackCompNone:
	case PackCompZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, 0, err
		}
		defer dec.Close()
		b, err := dec.DecodeAll(content, nil)
		if err != nil {
			return nil, 0, err
		}
		content = b
	default:
		return nil, 0, fmt.Errorf("vxl: unsupported pack compression: %d", comp)
	}

	r := bytes.NewReader(content)
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, 0, err
	}
	pack := &Pack{Entries: make([]PackEntry, n)}
	for i := uint32(0); i < n; i++ {
		e, err := readPackEntry(r)
		if err != nil {
			return nil, 0, fmt.Errorf("vxl: pack entry %d: %w", i, err)
		}
		pack.Entries[i] = e
	}
	return pack, comp, nil
}

func readPackEntry(r *bytes.Reader) (PackEntry, error) {
	var e PackEntry
	var nameLen uint16
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return e, err
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return e, err
	}
	var dx, dy, dz uint32
	var palLen uint16
	if err := binary.Read(r, binary.LittleEndian, &dx); err != nil {
		return e, err
	}
	if err := binary.Read(r, binary.LittleEndian, &dy); err != nil {
		return e, err
	}
	if err := binary.Read(r, binary.LittleEndian, &dz); err != nil {
		return e, err
	}
	if err := binary.Read(r, binary.LittleEndian, &palLen); err != nil {
		return e, err
	}
	if palLen > MaxPaletteSize {
		return e, fmt.Errorf("palette length %d exceeds %d", palLen, MaxPaletteSize)
	}
	palette := make([]Color, palLen)
	rgba := make([]byte, 4)
	for i := range palette {
		if _, err := io.ReadFull(r, rgba); err != nil {
			return e, err
		}
		palette[i] = Color{rgba[0], rgba[1], rgba[2], rgba[3]}
	}

	var bpp uint8
	if err := binary.Read(r, binary.LittleEndian, &bpp); err != nil {
		return e, err
	}
	if bpp < 1 || bpp > 8 {
		return e, fmt.Errorf("invalid bits per voxel: %d", bpp)
	}
	var sum uint64
	if err := binary.Read(r, binary.LittleEndian, &sum); err != nil {
		return e, err
	}

	vol64, ok := denseVolume(dx, dy, dz)
	if !ok {
		return e, fmt.Errorf("implausible dimensions %dx%dx%d", dx, dy, dz)
	}
	// The packed payload needs at least one bit per voxel, so a volume
	// exceeding the remaining bits is truncated regardless of bpp. Checking
	// before allocating also bounds the buffers to the input size.
	if vol64 > uint64(r.Len())*8 {
		return e, io.ErrUnexpectedEOF
	}
	vol := int(vol64)
	packed := make([]byte, (vol*int(bpp)+7)/8)
	if _, err := io.ReadFull(r, packed); err != nil {
		return e, err
	}
	br := newBitReader(packed)
	indices := make([]uint8, vol)
	for i := range indices {
		v, err := br.readBits(bpp)
		if err != nil {
			return e, err
		}
		indices[i] = uint8(v)
	}
	if xxhash.Sum64(indices) != sum {
		return e, ErrPackChecksum
	}

	e.Name = string(name)
	e.Object = &VoxelObject{
		Dims:     [3]int{int(dx), int(dy), int(dz)},
		Palette:  palette,
		Indices:  indices,
		Model:    IdentityMatrix(),
		InvModel: IdentityMatrix(),
	}
	return e, nil
}
