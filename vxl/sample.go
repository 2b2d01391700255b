package vxl

import "math"

// fallbackColor is used when a mesh carries no vertex colors, no texture and
// no material base color.
var fallbackColor = Color{128, 128, 128, 255}

// barycentric returns the weights (u, v, w) of p relative to the triangle,
// projecting p onto the triangle's plane. Zero-area triangles get an equal
// centroid weighting instead of a division by zero.
func barycentric(p Vec3, t Triangle) (u, v, w float64) {
	e0 := t.V1.Sub(t.V0)
	e1 := t.V2.Sub(t.V0)
	e2 := p.Sub(t.V0)
	d00 := e0.Dot(e0)
	d01 := e0.Dot(e1)
	d11 := e1.Dot(e1)
	d20 := e2.Dot(e0)
	d21 := e2.Dot(e1)
	denom := d00*d11 - d01*d01
	if math.Abs(denom) < 1e-12 {
		return 1.0 / 3, 1.0 / 3, 1.0 / 3
	}
	v = (d11*d20 - d01*d21) / denom
	w = (d00*d21 - d01*d20) / denom
	u = 1 - v - w
	return u, v, w
}

// wrap01 wraps a texture coordinate into [0,1), negative-safe.
func wrap01(x float64) float64 {
	return x - math.Floor(x)
}

func clampChannel(f float64) uint8 {
	r := math.Round(f)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}

// lerpColor blends three colors by barycentric weights, rounding each
// channel to the nearest integer.
func lerpColor(c0, c1, c2 Color, u, v, w float64) Color {
	return Color{
		R: clampChannel(u*float64(c0.R) + v*float64(c1.R) + w*float64(c2.R)),
		G: clampChannel(u*float64(c0.G) + v*float64(c1.G) + w*float64(c2.G)),
		B: clampChannel(u*float64(c0.B) + v*float64(c1.B) + w*float64(c2.B)),
		A: clampChannel(u*float64(c0.A) + v*float64(c1.A) + w*float64(c2.A)),
	}
}

// sampleTexture does a nearest-pixel lookup at (u, v). Both coordinates wrap
// with a negative-safe modulo; V flips because raster row 0 is the top of
// the image while V grows upward.
func sampleTexture(tex *Texture, u, v float64) Color {
	u = wrap01(u)
	v = 1 - wrap01(v)
	x := int(u * float64(tex.Width))
	y := int(v * float64(tex.Height))
	return tex.At(x, y)
}

// sampleColor resolves the color of a point on a triangle of mesh m. The
// triangle corners are the mesh vertices i0, i1, i2; tri and p are the same
// geometry in voxel-grid space (the affine grid map preserves barycentric
// weights, so attributes interpolate correctly there). Priority: per-vertex
// colors, then texture, then material base color, then neutral gray.
func sampleColor(m *Mesh, i0, i1, i2 uint32, tri Triangle, p Vec3) Color {
	u, v, w := barycentric(p, tri)
	if len(m.Colors) > 0 {
		return lerpColor(m.Colors[i0], m.Colors[i1], m.Colors[i2], u, v, w)
	}
	if tex := m.Material.Texture; tex != nil && len(m.UVs) > 0 {
		uv0, uv1, uv2 := m.UVs[i0], m.UVs[i1], m.UVs[i2]
		tu := u*uv0.X + v*uv1.X + w*uv2.X
		tv := u*uv0.Y + v*uv1.Y + w*uv2.Y
		return sampleTexture(tex, tu, tv)
	}
	if m.Material.BaseColor != nil {
		return *m.Material.BaseColor
	}
	return fallbackColor
}
