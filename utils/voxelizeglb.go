package utils

import (
	"fmt"
	"os"

	"github.com/voxellaneous/vxl/vxl"
)

// RunGLB2VXL voxelizes a .glb file into a VXL1 artifact on disk.
func RunGLB2VXL(inPath, outPath string, resolution int, solid bool) error {
	if resolution < 1 {
		return fmt.Errorf("invalid resolution: %d", resolution)
	}
	meshes, err := LoadGLBMeshes(inPath)
	if err != nil {
		return fmt.Errorf("failed to load meshes: %w", err)
	}

	mode := vxl.Surface
	if solid {
		mode = vxl.Solid
	}
	bounds := vxl.MeshBounds(meshes)
	grid := vxl.Voxelize(meshes, bounds, vxl.Config{Resolution: resolution, Mode: mode})
	res := vxl.MapToPalette(grid, nil)

	obj := &vxl.VoxelObject{
		Dims:     [3]int{grid.NX, grid.NY, grid.NZ},
		Palette:  res.Palette,
		Indices:  res.Indices,
		Model:    vxl.IdentityMatrix(),
		InvModel: vxl.IdentityMatrix(),
	}
	data, err := vxl.Encode(obj)
	if err != nil {
		return fmt.Errorf("failed to encode VXL: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return err
	}

	filled := 0
	for _, v := range res.Indices {
		if v != 0 {
			filled++
		}
	}
	fmt.Printf(".vxl saved (%d bytes, %d/%d voxels, %d colors, quantized=%v)\n",
		len(data), filled, len(res.Indices), res.UniqueColors, res.Quantized)
	return nil
}
