package vxl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"testing"
)

func testObject() *VoxelObject {
	obj := &VoxelObject{
		Dims: [3]int{3, 2, 2},
		Palette: []Color{
			{},
			{255, 0, 0, 255},
			{0, 255, 0, 255},
			{0, 0, 255, 128},
		},
		Indices:  make([]uint8, 12),
		Model:    IdentityMatrix(),
		InvModel: IdentityMatrix(),
	}
	for i := range obj.Indices {
		obj.Indices[i] = uint8(i % 4)
	}
	return obj
}

func TestCodecRoundTrip(t *testing.T) {
	obj := testObject()
	data, err := Encode(obj)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if data[0] != 0x1f || data[1] != 0x8b {
		t.Fatalf("output is not gzip-compressed: % x", data[:2])
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, obj) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, obj)
	}
}

func TestDecodeUncompressed(t *testing.T) {
	// Transport layers sometimes hand over an already-gunzipped stream.
	obj := testObject()
	got, err := Decode(encodeRaw(obj))
	if err != nil {
		t.Fatalf("Decode raw: %v", err)
	}
	if !reflect.DeepEqual(got, obj) {
		t.Fatalf("raw round trip mismatch")
	}
}

func TestDecodeBadMagic(t *testing.T) {
	raw := encodeRaw(testObject())
	for i := 0; i < len(Magic); i++ {
		corrupt := bytes.Clone(raw)
		corrupt[i] ^= 0xff
		if _, err := Decode(corrupt); !errors.Is(err, ErrBadMagic) {
			t.Fatalf("magic byte %d corrupted: err = %v, want ErrBadMagic", i, err)
		}
	}
	if _, err := Decode(nil); !errors.Is(err, ErrBadMagic) {
		t.Fatalf("empty input: err = %v, want ErrBadMagic", err)
	}
}

func TestDecodeUnsupportedVersion(t *testing.T) {
	raw := encodeRaw(testObject())
	raw[4] = 2
	if _, err := Decode(raw); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("err = %v, want ErrUnsupportedVersion", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	raw := encodeRaw(testObject())
	// Every cut past the magic must surface as truncation, whether it lands
	// in the header, the palette, or the index buffer.
	for n := 4; n < len(raw); n++ {
		if _, err := Decode(raw[:n]); !errors.Is(err, ErrTruncated) {
			t.Fatalf("cut at %d bytes: err = %v, want ErrTruncated", n, err)
		}
	}
}

func TestDecodeTrailingBytesIgnored(t *testing.T) {
	obj := testObject()
	raw := append(encodeRaw(obj), 0xde, 0xad)
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode with trailing bytes: %v", err)
	}
	if !reflect.DeepEqual(got, obj) {
		t.Fatalf("trailing bytes changed the result")
	}
}

// rawHeader builds an uncompressed artifact header with the given dimensions
// and an empty palette, no index bytes following.
func rawHeader(dx, dy, dz uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString(Magic)
	buf.WriteByte(Version)
	_ = binary.Write(&buf, binary.LittleEndian, dx)
	_ = binary.Write(&buf, binary.LittleEndian, dy)
	_ = binary.Write(&buf, binary.LittleEndian, dz)
	_ = binary.Write(&buf, binary.LittleEndian, uint16(0))
	return buf.Bytes()
}

func TestDecodeRejectsOverflowingDims(t *testing.T) {
	// 2^31 * 2^31 * 4 wraps a uint64 volume to zero; the declared dimensions
	// must be rejected, not decoded into an object with no index data.
	obj, err := Decode(rawHeader(1<<31, 1<<31, 4))
	if err == nil {
		t.Fatalf("overflowing dimensions accepted: dims=%v indices=%d", obj.Dims, len(obj.Indices))
	}
}

func TestDecodeHugeVolumeTruncated(t *testing.T) {
	// A volume that fits a uint64 but exceeds the payload is plain truncation.
	if _, err := Decode(rawHeader(1<<20, 1, 1)); !errors.Is(err, ErrTruncated) {
		t.Fatalf("err = %v, want ErrTruncated", err)
	}
}

func TestEncodeValidation(t *testing.T) {
	obj := testObject()
	obj.Indices = obj.Indices[:5]
	if _, err := Encode(obj); err == nil {
		t.Fatalf("short index buffer accepted")
	}

	obj = testObject()
	obj.Palette = make([]Color, MaxPaletteSize+1)
	if _, err := Encode(obj); err == nil {
		t.Fatalf("oversized palette accepted")
	}
}
