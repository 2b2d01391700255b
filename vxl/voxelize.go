package vxl

import "math"

// FillMode selects what voxelization produces.
type FillMode int

const (
	// Surface keeps only cells touched by triangles.
	Surface FillMode = iota
	// Solid additionally fills enclosed interiors with a parity scan.
	Solid
)

// Config drives one voxelization run. Resolution must be a positive integer;
// validating it is the caller's responsibility.
type Config struct {
	Resolution int
	Mode       FillMode
}

// Voxelize rasterizes the meshes into a sparse resolution^3 grid. All three
// axes share one uniform scale, (resolution-1)/max(extents), so aspect ratio
// is preserved; bounds.Min maps to the grid origin. Cells are colored
// first-writer-wins in mesh and triangle submission order: a later triangle
// never overwrites an already-colored cell. Zero triangles yield an empty
// grid.
func Voxelize(meshes []*Mesh, bounds BoundingBox, cfg Config) *VoxelGrid {
	res := cfg.Resolution
	grid := NewVoxelGrid(res, res, res)

	ext := bounds.Extents()
	maxExt := math.Max(ext.X, math.Max(ext.Y, ext.Z))
	scale := 0.0
	if maxExt > 0 {
		scale = float64(res-1) / maxExt
	}

	for _, m := range meshes {
		voxelizeMesh(grid, m, bounds.Min, scale)
	}

	if cfg.Mode == Solid {
		fillInterior(grid)
	}
	return grid
}

func voxelizeMesh(grid *VoxelGrid, m *Mesh, origin Vec3, scale float64) {
	for i := 0; i+3 <= len(m.Indices); i += 3 {
		i0, i1, i2 := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		tri := Triangle{
			V0: m.Positions[i0].Sub(origin).Scale(scale),
			V1: m.Positions[i1].Sub(origin).Scale(scale),
			V2: m.Positions[i2].Sub(origin).Scale(scale),
		}

		lo := tri.V0.Min(tri.V1).Min(tri.V2)
		hi := tri.V0.Max(tri.V1).Max(tri.V2)
		x0, x1 := cellRange(lo.X, hi.X, grid.NX)
		y0, y1 := cellRange(lo.Y, hi.Y, grid.NY)
		z0, z1 := cellRange(lo.Z, hi.Z, grid.NZ)

		for z := z0; z <= z1; z++ {
			for y := y0; y <= y1; y++ {
				for x := x0; x <= x1; x++ {
					idx := grid.Index(x, y, z)
					if _, taken := grid.Voxels[idx]; taken {
						continue
					}
					if !TriangleIntersectsCell(tri, x, y, z) {
						continue
					}
					center := Vec3{float64(x) + 0.5, float64(y) + 0.5, float64(z) + 0.5}
					grid.Voxels[idx] = sampleColor(m, i0, i1, i2, tri, center)
				}
			}
		}
	}
}

// cellRange converts a coordinate interval to an inclusive integer cell
// range clamped to [0, n-1].
func cellRange(lo, hi float64, n int) (int, int) {
	a := int(math.Floor(lo))
	b := int(math.Floor(hi))
	if a < 0 {
		a = 0
	}
	if b > n-1 {
		b = n - 1
	}
	return a, b
}

// fillInterior runs a parity scan along +z for every (x, y) column: each
// surface cell toggles an inside flag, and on the toggle back out the empty
// cells strictly between the last surface cell and the current one inherit
// the last surface cell's color. Correct only for watertight, consistently
// wound surfaces; open or self-intersecting meshes can under- or over-fill,
// which is accepted behavior rather than repaired here.
func fillInterior(g *VoxelGrid) {
	for y := 0; y < g.NY; y++ {
		for x := 0; x < g.NX; x++ {
			inside := false
			lastZ := -1
			var lastColor Color
			for z := 0; z < g.NZ; z++ {
				c, ok := g.Voxels[g.Index(x, y, z)]
				if !ok {
					continue
				}
				if inside {
					for f := lastZ + 1; f < z; f++ {
						g.Voxels[g.Index(x, y, f)] = lastColor
					}
				}
				inside = !inside
				lastZ = z
				lastColor = c
			}
		}
	}
}
