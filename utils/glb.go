package utils

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/voxellaneous/vxl/vxl"
)

// LoadGLBMeshes is the mesh-loading collaborator: it decodes a .glb/.gltf
// file into one vxl.Mesh per primitive, with positions, indices, optional
// UV and vertex-color attributes, and the resolved material (base color
// factor plus a decoded base-color texture raster when one is embedded).
// Node transforms are not applied; exporters typically bake them.
func LoadGLBMeshes(path string) ([]*vxl.Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	var meshes []*vxl.Mesh
	for _, gm := range doc.Meshes {
		for _, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			m, err := loadPrimitive(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %q: %w", gm.Name, err)
			}
			meshes = append(meshes, m)
		}
	}
	return meshes, nil
}

func loadPrimitive(doc *gltf.Document, prim *gltf.Primitive) (*vxl.Mesh, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	m := &vxl.Mesh{Positions: make([]vxl.Vec3, len(positions))}
	for i, p := range positions {
		m.Positions[i] = vxl.Vec3{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
		m.Indices = indices
	} else {
		m.Indices = make([]uint32, len(positions))
		for i := range m.Indices {
			m.Indices[i] = uint32(i)
		}
	}

	if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[uvIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
		m.UVs = make([]vxl.Vec2, len(uvs))
		for i, uv := range uvs {
			m.UVs[i] = vxl.Vec2{X: float64(uv[0]), Y: float64(uv[1])}
		}
	}

	if colIdx, ok := prim.Attributes[gltf.COLOR_0]; ok {
		cols, err := modeler.ReadColor(doc, doc.Accessors[colIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("read colors: %w", err)
		}
		m.Colors = make([]vxl.Color, len(cols))
		for i, c := range cols {
			m.Colors[i] = vxl.Color{R: c[0], G: c[1], B: c[2], A: c[3]}
		}
	}

	if prim.Material != nil {
		mat, err := loadMaterial(doc, doc.Materials[*prim.Material])
		if err != nil {
			return nil, err
		}
		m.Material = mat
	}
	return m, nil
}

func loadMaterial(doc *gltf.Document, gmat *gltf.Material) (vxl.Material, error) {
	var mat vxl.Material
	pbr := gmat.PBRMetallicRoughness
	if pbr == nil {
		return mat, nil
	}
	if f := pbr.BaseColorFactor; f != nil {
		c := vxl.Color{
			R: uint8(f[0]*255 + 0.5),
			G: uint8(f[1]*255 + 0.5),
			B: uint8(f[2]*255 + 0.5),
			A: uint8(f[3]*255 + 0.5),
		}
		mat.BaseColor = &c
	}
	if ti := pbr.BaseColorTexture; ti != nil {
		tex, err := loadTexture(doc, ti.Index)
		if err != nil {
			return mat, fmt.Errorf("material %q: %w", gmat.Name, err)
		}
		mat.Texture = tex
	}
	return mat, nil
}

func loadTexture(doc *gltf.Document, texIdx uint32) (*vxl.Texture, error) {
	tex := doc.Textures[texIdx]
	if tex.Source == nil {
		return nil, fmt.Errorf("texture %d has no image source", texIdx)
	}
	img := doc.Images[*tex.Source]
	if img.BufferView == nil {
		return nil, fmt.Errorf("image %q is not embedded", img.Name)
	}
	bv := doc.BufferViews[*img.BufferView]
	raw := doc.Buffers[bv.Buffer].Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]

	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image %q: %w", img.Name, err)
	}
	bounds := decoded.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := &vxl.Texture{Width: w, Height: h, Pixels: make([]byte, w*h*4)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := decoded.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			o := (y*w + x) * 4
			out.Pixels[o] = uint8(r >> 8)
			out.Pixels[o+1] = uint8(g >> 8)
			out.Pixels[o+2] = uint8(b >> 8)
			out.Pixels[o+3] = uint8(a >> 8)
		}
	}
	return out, nil
}
