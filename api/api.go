// Package api exposes the voxelization pipeline as in-memory, bytes-in /
// bytes-out operations for embedders (servers, wasm bindings, tools).
package api

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/voxellaneous/vxl/vxl"
)

// MeshesToVXL runs the full pipeline over already-decoded meshes and returns
// a VXL1 artifact: voxelize, map to a palette, encode.
func MeshesToVXL(meshes []*vxl.Mesh, bounds vxl.BoundingBox, cfg vxl.Config) ([]byte, error) {
	if cfg.Resolution < 1 {
		return nil, fmt.Errorf("invalid resolution: %d", cfg.Resolution)
	}
	grid := vxl.Voxelize(meshes, bounds, cfg)
	res := vxl.MapToPalette(grid, nil)
	obj := &vxl.VoxelObject{
		Dims:     [3]int{grid.NX, grid.NY, grid.NZ},
		Palette:  res.Palette,
		Indices:  res.Indices,
		Model:    vxl.IdentityMatrix(),
		InvModel: vxl.IdentityMatrix(),
	}
	return vxl.Encode(obj)
}

// VXLToGLB decodes a VXL1 artifact, greedy-meshes it and returns a binary
// glTF document with per-vertex colors and a single PBR material.
func VXLToGLB(vxlBytes []byte) ([]byte, error) {
	obj, err := vxl.Decode(vxlBytes)
	if err != nil {
		return nil, err
	}
	mesh := vxl.GenerateMesh(obj)

	positions := make([][3]float32, len(mesh.Vertices))
	colors := make([][4]float32, len(mesh.Vertices))
	hasAlpha := false
	for i, v := range mesh.Vertices {
		positions[i] = v.Position
		c := obj.Palette[v.Color]
		colors[i] = [4]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
		if c.A < 255 {
			hasAlpha = true
		}
	}
	indices := make([]uint32, len(mesh.Indices))
	copy(indices, mesh.Indices)

	// flat normals per face
	normals := make([][3]float32, len(positions))
	for i := 0; i < len(indices); i += 3 {
		v0, v1, v2 := indices[i], indices[i+1], indices[i+2]
		p0, p1, p2 := positions[v0], positions[v1], positions[v2]
		vec1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		vec2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		cross := [3]float32{
			vec1[1]*vec2[2] - vec1[2]*vec2[1],
			vec1[2]*vec2[0] - vec1[0]*vec2[2],
			vec1[0]*vec2[1] - vec1[1]*vec2[0],
		}
		length := float32(math.Sqrt(float64(cross[0]*cross[0] + cross[1]*cross[1] + cross[2]*cross[2])))
		if length > 0 {
			cross[0] /= length
			cross[1] /= length
			cross[2] /= length
		}
		normals[v0] = cross
		normals[v1] = cross
		normals[v2] = cross
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "VXL1 -> GLB"
	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	colorAccessor := modeler.WriteColor(doc, colors)
	indicesAccessor := modeler.WriteIndices(doc, indices)
	prim := &gltf.Primitive{
		Attributes: map[string]uint32{
			gltf.POSITION: uint32(posAccessor),
			gltf.NORMAL:   uint32(normalAccessor),
			gltf.COLOR_0:  uint32(colorAccessor),
		},
		Indices: gltf.Index(uint32(indicesAccessor)),
	}
	pbr := &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float32{1, 1, 1, 1}, MetallicFactor: gltf.Float(0), RoughnessFactor: gltf.Float(1)}
	material := &gltf.Material{PBRMetallicRoughness: pbr}
	if hasAlpha {
		material.AlphaMode = gltf.AlphaBlend
	} else {
		material.AlphaMode = gltf.AlphaOpaque
	}
	doc.Materials = []*gltf.Material{material}
	prim.Material = gltf.Index(0)
	meshGltf := &gltf.Mesh{Name: "VoxelMesh", Primitives: []*gltf.Primitive{prim}}
	doc.Meshes = []*gltf.Mesh{meshGltf}
	node := &gltf.Node{Mesh: gltf.Index(0)}
	doc.Nodes = []*gltf.Node{node}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(0))

	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// PackVXLs builds a pack from named VXL1 artifacts. Entries are ordered by
// name so the same inputs always produce the same pack bytes.
func PackVXLs(files map[string][]byte) ([]byte, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files")
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	pack := &vxl.Pack{Entries: make([]vxl.PackEntry, 0, len(files))}
	for _, name := range names {
		obj, err := vxl.Decode(files[name])
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		pack.Entries = append(pack.Entries, vxl.PackEntry{Name: name, Object: obj})
	}
	return pack.Marshal(vxl.PackCompZstd)
}

// UnpackVXLToMemory returns a map of entry name -> VXL1 bytes from a pack.
func UnpackVXLToMemory(packBytes []byte) (map[string][]byte, error) {
	pack, _, err := vxl.UnmarshalPack(packBytes)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(pack.Entries))
	for _, e := range pack.Entries {
		b, err := vxl.Encode(e.Object)
		if err != nil {
			return nil, fmt.Errorf("re-encode %s: %w", e.Name, err)
		}
		out[e.Name] = b
	}
	return out, nil
}
