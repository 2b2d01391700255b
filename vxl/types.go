// Package vxl converts triangulated surface meshes into fixed-resolution
// colored voxel volumes and serializes them as compressed VXL1 artifacts.
package vxl

// Color is an 8-bit RGBA color. The zero value is the transparent/empty
// color reserved for palette index 0.
type Color struct {
	R, G, B, A uint8
}

// Texture is a decoded RGBA raster, row-major, 4 bytes per pixel, row 0 at
// the top of the image.
type Texture struct {
	Width  int
	Height int
	Pixels []byte
}

// At returns the pixel at (x, y), clamped to the raster bounds.
func (t *Texture) At(x, y int) Color {
	if x < 0 {
		x = 0
	} else if x >= t.Width {
		x = t.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= t.Height {
		y = t.Height - 1
	}
	o := (y*t.Width + x) * 4
	return Color{t.Pixels[o], t.Pixels[o+1], t.Pixels[o+2], t.Pixels[o+3]}
}

// Material is the resolved surface appearance for one mesh. Both fields are
// optional; at most one texture participates in sampling.
type Material struct {
	BaseColor *Color
	Texture   *Texture
}

// Mesh is an immutable triangulated surface supplied by the mesh-loading
// collaborator. Positions are world-space. UVs and Colors are optional; when
// present they run parallel to Positions. The pipeline never mutates a Mesh.
type Mesh struct {
	Positions []Vec3
	Indices   []uint32
	UVs       []Vec2
	Colors    []Color
	Material  Material
}

// TriangleCount returns the number of complete triangles in the index array.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// BoundingBox is an axis-aligned box in mesh space. It defines the linear
// map from mesh space to voxel-grid space shared by all meshes of one run.
type BoundingBox struct {
	Min, Max Vec3
}

// Extents returns the box size per axis.
func (b BoundingBox) Extents() Vec3 {
	return b.Max.Sub(b.Min)
}

// Union returns the smallest box containing both boxes.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return BoundingBox{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// MeshBounds computes the world-space bounding box over all mesh vertices.
// An empty mesh list yields the zero box.
func MeshBounds(meshes []*Mesh) BoundingBox {
	var bb BoundingBox
	first := true
	for _, m := range meshes {
		for _, p := range m.Positions {
			if first {
				bb = BoundingBox{Min: p, Max: p}
				first = false
				continue
			}
			bb.Min = bb.Min.Min(p)
			bb.Max = bb.Max.Max(p)
		}
	}
	return bb
}

// VoxelGrid is the sparse intermediate volume produced by voxelization.
// Voxels maps flattened indices (x + nx*(y + ny*z)) to surface colors;
// absence means empty.
type VoxelGrid struct {
	NX, NY, NZ int
	Voxels     map[int]Color
}

// NewVoxelGrid returns an empty grid with the given dimensions.
func NewVoxelGrid(nx, ny, nz int) *VoxelGrid {
	return &VoxelGrid{NX: nx, NY: ny, NZ: nz, Voxels: make(map[int]Color)}
}

// Index flattens a cell coordinate.
func (g *VoxelGrid) Index(x, y, z int) int {
	return x + g.NX*(y+g.NY*z)
}

// Volume returns the dense cell count nx*ny*nz.
func (g *VoxelGrid) Volume() int {
	return g.NX * g.NY * g.NZ
}

// VoxelObject is the palette-indexed output volume. Indices holds one
// palette index per cell (0 = empty) in the same flattening order as
// VoxelGrid. Model and InvModel are the placement transform and its inverse;
// this package passes them through without interpreting them and the codec
// does not serialize them.
type VoxelObject struct {
	Dims     [3]int
	Palette  []Color
	Indices  []uint8
	Model    [16]float32
	InvModel [16]float32
}

// At returns the palette index at (x, y, z), or 0 outside the volume.
func (o *VoxelObject) At(x, y, z int) uint8 {
	if x < 0 || x >= o.Dims[0] || y < 0 || y >= o.Dims[1] || z < 0 || z >= o.Dims[2] {
		return 0
	}
	return o.Indices[x+o.Dims[0]*(y+o.Dims[1]*z)]
}

// Volume returns the dense cell count of the object.
func (o *VoxelObject) Volume() int {
	return o.Dims[0] * o.Dims[1] * o.Dims[2]
}

// IdentityMatrix returns a column-major 4x4 identity transform.
func IdentityMatrix() [16]float32 {
	return [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}
