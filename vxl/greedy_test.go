package vxl

import "testing"

func singleVoxelObject(dims [3]int, set map[[3]int]uint8, palette []Color) *VoxelObject {
	obj := &VoxelObject{
		Dims:     dims,
		Palette:  palette,
		Indices:  make([]uint8, dims[0]*dims[1]*dims[2]),
		Model:    IdentityMatrix(),
		InvModel: IdentityMatrix(),
	}
	for p, c := range set {
		obj.Indices[p[0]+dims[0]*(p[1]+dims[1]*p[2])] = c
	}
	return obj
}

func TestGenerateMeshSingleVoxel(t *testing.T) {
	obj := singleVoxelObject([3]int{1, 1, 1},
		map[[3]int]uint8{{0, 0, 0}: 1},
		[]Color{{}, {255, 0, 0, 255}})

	mesh := GenerateMesh(obj)
	if len(mesh.Vertices) != 24 {
		t.Fatalf("vertices = %d, want 24 (6 faces, 4 each)", len(mesh.Vertices))
	}
	if len(mesh.Indices) != 36 {
		t.Fatalf("indices = %d, want 36 (6 faces, 2 triangles each)", len(mesh.Indices))
	}
	for i, v := range mesh.Vertices {
		if v.Color != 1 {
			t.Fatalf("vertex %d color = %d, want 1", i, v.Color)
		}
		for axis := 0; axis < 3; axis++ {
			if v.Position[axis] != 0 && v.Position[axis] != 1 {
				t.Fatalf("vertex %d position %v outside the unit cube", i, v.Position)
			}
		}
	}
}

func TestGenerateMeshMergesSameColor(t *testing.T) {
	// Two adjacent same-color voxels: the four long side faces each merge
	// into one quad, plus the two end caps. Six quads total, same as a
	// single voxel.
	obj := singleVoxelObject([3]int{2, 1, 1},
		map[[3]int]uint8{{0, 0, 0}: 1, {1, 0, 0}: 1},
		[]Color{{}, {255, 0, 0, 255}})

	mesh := GenerateMesh(obj)
	if len(mesh.Vertices) != 24 {
		t.Fatalf("vertices = %d, want 24 (merged to 6 quads)", len(mesh.Vertices))
	}
	if len(mesh.Indices) != 36 {
		t.Fatalf("indices = %d, want 36", len(mesh.Indices))
	}
}

func TestGenerateMeshSplitsOnColor(t *testing.T) {
	// Different colors cannot merge: each voxel keeps its own 5 exposed
	// faces, and the shared boundary is occluded on both sides.
	obj := singleVoxelObject([3]int{2, 1, 1},
		map[[3]int]uint8{{0, 0, 0}: 1, {1, 0, 0}: 2},
		[]Color{{}, {255, 0, 0, 255}, {0, 255, 0, 255}})

	mesh := GenerateMesh(obj)
	if len(mesh.Vertices) != 40 {
		t.Fatalf("vertices = %d, want 40 (10 quads)", len(mesh.Vertices))
	}
	if len(mesh.Indices) != 60 {
		t.Fatalf("indices = %d, want 60", len(mesh.Indices))
	}
}

func TestGenerateMeshHiddenInterior(t *testing.T) {
	// A solid 3x3x3 block exposes only its hull: one merged quad per face.
	set := make(map[[3]int]uint8)
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			for z := 0; z < 3; z++ {
				set[[3]int{x, y, z}] = 1
			}
		}
	}
	obj := singleVoxelObject([3]int{3, 3, 3}, set, []Color{{}, {128, 128, 128, 255}})

	mesh := GenerateMesh(obj)
	if len(mesh.Vertices) != 24 {
		t.Fatalf("vertices = %d, want 24 (one quad per cube face)", len(mesh.Vertices))
	}
}

func TestGenerateMeshEmpty(t *testing.T) {
	obj := singleVoxelObject([3]int{4, 4, 4}, nil, []Color{{}})
	mesh := GenerateMesh(obj)
	if len(mesh.Vertices) != 0 || len(mesh.Indices) != 0 {
		t.Fatalf("empty object produced geometry: %d vertices", len(mesh.Vertices))
	}
}
