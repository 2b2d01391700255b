package vxl

import "testing"

func TestSampleVertexColors(t *testing.T) {
	tri := Triangle{V0: Vec3{0, 0, 0}, V1: Vec3{4, 0, 0}, V2: Vec3{0, 4, 0}}
	m := &Mesh{
		Positions: []Vec3{tri.V0, tri.V1, tri.V2},
		Indices:   []uint32{0, 1, 2},
		Colors: []Color{
			{255, 0, 0, 255},
			{0, 255, 0, 255},
			{0, 0, 255, 255},
		},
	}
	if got := sampleColor(m, 0, 1, 2, tri, tri.V0); got != (Color{255, 0, 0, 255}) {
		t.Fatalf("corner sample = %v, want pure red", got)
	}
	centroid := Vec3{4.0 / 3, 4.0 / 3, 0}
	if got := sampleColor(m, 0, 1, 2, tri, centroid); got != (Color{85, 85, 85, 255}) {
		t.Fatalf("centroid sample = %v, want (85,85,85,255)", got)
	}
}

func checkerTexture() *Texture {
	// 2x2 raster: row 0 (top) red, green; row 1 (bottom) blue, white.
	return &Texture{
		Width:  2,
		Height: 2,
		Pixels: []byte{
			255, 0, 0, 255, 0, 255, 0, 255,
			0, 0, 255, 255, 255, 255, 255, 255,
		},
	}
}

func TestSampleTexture(t *testing.T) {
	tri := Triangle{V0: Vec3{0, 0, 0}, V1: Vec3{4, 0, 0}, V2: Vec3{0, 4, 0}}
	m := &Mesh{
		Positions: []Vec3{tri.V0, tri.V1, tri.V2},
		Indices:   []uint32{0, 1, 2},
		UVs:       []Vec2{{0.25, 0.25}, {0.25, 0.25}, {0.25, 0.25}},
		Material:  Material{Texture: checkerTexture()},
	}
	// UV (0.25, 0.25): V flips to 0.75, so the lookup hits the bottom-left
	// pixel of the raster.
	if got := sampleColor(m, 0, 1, 2, tri, tri.V0); got != (Color{0, 0, 255, 255}) {
		t.Fatalf("texture sample = %v, want blue", got)
	}
}

func TestSampleTextureNegativeWrap(t *testing.T) {
	tri := Triangle{V0: Vec3{0, 0, 0}, V1: Vec3{4, 0, 0}, V2: Vec3{0, 4, 0}}
	m := &Mesh{
		Positions: []Vec3{tri.V0, tri.V1, tri.V2},
		Indices:   []uint32{0, 1, 2},
		UVs:       []Vec2{{-0.75, 1.25}, {-0.75, 1.25}, {-0.75, 1.25}},
		Material:  Material{Texture: checkerTexture()},
	}
	// -0.75 and 1.25 both wrap to 0.25, so this matches TestSampleTexture.
	if got := sampleColor(m, 0, 1, 2, tri, tri.V0); got != (Color{0, 0, 255, 255}) {
		t.Fatalf("wrapped texture sample = %v, want blue", got)
	}
}

func TestSamplePriority(t *testing.T) {
	tri := Triangle{V0: Vec3{0, 0, 0}, V1: Vec3{4, 0, 0}, V2: Vec3{0, 4, 0}}
	base := Color{10, 20, 30, 255}

	// Vertex colors beat the texture and the base color.
	m := &Mesh{
		Positions: []Vec3{tri.V0, tri.V1, tri.V2},
		Indices:   []uint32{0, 1, 2},
		Colors:    []Color{{1, 1, 1, 255}, {1, 1, 1, 255}, {1, 1, 1, 255}},
		UVs:       []Vec2{{0, 0}, {0, 0}, {0, 0}},
		Material:  Material{BaseColor: &base, Texture: checkerTexture()},
	}
	if got := sampleColor(m, 0, 1, 2, tri, tri.V0); got != (Color{1, 1, 1, 255}) {
		t.Fatalf("vertex colors should win, got %v", got)
	}

	// No vertex colors, no texture: base color.
	m = &Mesh{
		Positions: []Vec3{tri.V0, tri.V1, tri.V2},
		Indices:   []uint32{0, 1, 2},
		Material:  Material{BaseColor: &base},
	}
	if got := sampleColor(m, 0, 1, 2, tri, tri.V0); got != base {
		t.Fatalf("base color fallback = %v, want %v", got, base)
	}

	// Nothing at all: neutral gray.
	m = &Mesh{Positions: []Vec3{tri.V0, tri.V1, tri.V2}, Indices: []uint32{0, 1, 2}}
	if got := sampleColor(m, 0, 1, 2, tri, tri.V0); got != fallbackColor {
		t.Fatalf("fallback = %v, want %v", got, fallbackColor)
	}
}

func TestBarycentricDegenerate(t *testing.T) {
	p := Vec3{1, 1, 1}
	tri := Triangle{V0: p, V1: p, V2: p}
	u, v, w := barycentric(Vec3{5, 5, 5}, tri)
	if u != 1.0/3 || v != 1.0/3 || w != 1.0/3 {
		t.Fatalf("degenerate barycentric = (%v,%v,%v), want thirds", u, v, w)
	}

	m := &Mesh{
		Positions: []Vec3{p, p, p},
		Indices:   []uint32{0, 1, 2},
		Colors: []Color{
			{30, 0, 0, 255},
			{60, 0, 0, 255},
			{90, 0, 0, 255},
		},
	}
	if got := sampleColor(m, 0, 1, 2, tri, p); got != (Color{60, 0, 0, 255}) {
		t.Fatalf("degenerate sample = %v, want averaged (60,0,0,255)", got)
	}
}
