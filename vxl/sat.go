package vxl

import "math"

// Triangle holds three corners, in voxel-grid units when handed to the
// intersector.
type Triangle struct {
	V0, V1, V2 Vec3
}

// TriangleIntersectsCell reports whether the triangle touches the closed
// unit cube centered at (cx+0.5, cy+0.5, cz+0.5). Separating Axis Theorem
// over 13 axes: the 3 grid axes, the face normal, and the 9 edge/axis cross
// products. Returns as soon as any axis separates. Degenerate triangles are
// tested with their (possibly tiny) computed normal like any other.
func TriangleIntersectsCell(t Triangle, cx, cy, cz int) bool {
	center := Vec3{float64(cx) + 0.5, float64(cy) + 0.5, float64(cz) + 0.5}
	v0 := t.V0.Sub(center)
	v1 := t.V1.Sub(center)
	v2 := t.V2.Sub(center)

	// Grid axes first: cheapest rejection, an AABB overlap test.
	if separates(Vec3{1, 0, 0}, v0, v1, v2) ||
		separates(Vec3{0, 1, 0}, v0, v1, v2) ||
		separates(Vec3{0, 0, 1}, v0, v1, v2) {
		return false
	}

	e0 := v1.Sub(v0)
	e1 := v2.Sub(v1)
	e2 := v0.Sub(v2)

	// Nine edge cross products with the grid axes.
	for _, e := range [3]Vec3{e0, e1, e2} {
		if separates(Vec3{0, -e.Z, e.Y}, v0, v1, v2) ||
			separates(Vec3{e.Z, 0, -e.X}, v0, v1, v2) ||
			separates(Vec3{-e.Y, e.X, 0}, v0, v1, v2) {
			return false
		}
	}

	// Face normal last.
	return !separates(e0.Cross(e1), v0, v1, v2)
}

// separates projects the triangle and the half-unit cube onto axis a and
// reports whether the projections are disjoint. Strict comparisons keep
// touching geometry intersecting (the cube is closed).
func separates(a, v0, v1, v2 Vec3) bool {
	p0 := v0.Dot(a)
	p1 := v1.Dot(a)
	p2 := v2.Dot(a)
	r := 0.5 * (math.Abs(a.X) + math.Abs(a.Y) + math.Abs(a.Z))
	lo := math.Min(p0, math.Min(p1, p2))
	hi := math.Max(p0, math.Max(p1, p2))
	return lo > r || hi < -r
}
