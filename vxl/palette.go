package vxl

import (
	"fmt"
	"sort"
)

// MaxPaletteSize bounds the palette including the reserved transparent
// entry at index 0.
const MaxPaletteSize = 256

// maxOpaqueColors is the quantization target: every entry except the
// reserved slot.
const maxOpaqueColors = MaxPaletteSize - 1

// transparent is the reserved palette entry at index 0. Quantization never
// produces it and nearest-match never selects it.
var transparent = Color{}

// PaletteResult is the output of MapToPalette.
type PaletteResult struct {
	// Indices is the dense palette-index buffer, nx*ny*nz bytes, 0 = empty.
	Indices []uint8
	// Palette is the ordered color table, index 0 always transparent.
	Palette []Color
	// Quantized is true iff median-cut ran.
	Quantized bool
	// UniqueColors is the pre-quantization distinct color count.
	UniqueColors int
}

// MapToPalette reduces the sparse grid's color set to at most 256 palette
// entries and rewrites the volume as a dense index buffer. A non-nil
// existing palette is reused verbatim (merging into a scene that already has
// one) and must carry at least one non-reserved entry when the grid has any
// colored cell; otherwise the distinct colors become the palette directly
// when they fit, or median-cut quantization shrinks them to 255 entries.
func MapToPalette(grid *VoxelGrid, existing []Color) *PaletteResult {
	distinct := collectColors(grid)

	var palette []Color
	quantized := false
	switch {
	case existing != nil:
		palette = existing
	case len(distinct) <= maxOpaqueColors:
		palette = distinct
	default:
		palette = medianCut(distinct, maxOpaqueColors)
		quantized = true
	}
	palette = newPalette(palette)
	// A palette holding only the reserved entry cannot represent any colored
	// cell; it can only arise from a caller-supplied palette, so it is the
	// same class of misuse as an oversized one.
	if len(palette) < 2 && len(distinct) > 0 {
		panic("vxl: palette has no entry for colored cells")
	}

	// Exact lookups resolve against the first occurrence of each color,
	// never the reserved slot.
	exact := make(map[Color]uint8, len(palette))
	for i := 1; i < len(palette); i++ {
		if _, ok := exact[palette[i]]; !ok {
			exact[palette[i]] = uint8(i)
		}
	}

	indices := make([]uint8, grid.Volume())
	for idx, c := range grid.Voxels {
		if pi, ok := exact[c]; ok {
			indices[idx] = pi
		} else {
			indices[idx] = nearestIndex(palette, c)
		}
	}

	return &PaletteResult{
		Indices:      indices,
		Palette:      palette,
		Quantized:    quantized,
		UniqueColors: len(distinct),
	}
}

// collectColors gathers the distinct colors of the grid in first-seen order.
// Scanning flattened indices 0..n-1 keeps the order deterministic; iterating
// the map would not be.
func collectColors(grid *VoxelGrid) []Color {
	seen := make(map[Color]struct{})
	var colors []Color
	for idx := 0; idx < grid.Volume(); idx++ {
		c, ok := grid.Voxels[idx]
		if !ok {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		colors = append(colors, c)
	}
	return colors
}

// newPalette enforces the palette invariants: index 0 is the transparent
// entry (inserted if missing, at the cost of the last entry when that would
// overflow) and the total length stays within MaxPaletteSize. A longer
// palette is an internal invariant violation, not a recoverable error.
func newPalette(entries []Color) []Color {
	if len(entries) == 0 || entries[0] != transparent {
		entries = append([]Color{transparent}, entries...)
		if len(entries) > MaxPaletteSize {
			entries = entries[:MaxPaletteSize]
		}
	}
	if len(entries) > MaxPaletteSize {
		panic(fmt.Sprintf("vxl: palette has %d entries, limit is %d", len(entries), MaxPaletteSize))
	}
	return entries
}

// nearestIndex returns the palette index minimizing squared RGB distance,
// alpha excluded. Index 0 is never a candidate.
func nearestIndex(palette []Color, c Color) uint8 {
	if len(palette) < 2 {
		return 0
	}
	best := 1
	bestDist := 1 << 30
	for i := 1; i < len(palette); i++ {
		p := palette[i]
		dr := int(p.R) - int(c.R)
		dg := int(p.G) - int(c.G)
		db := int(p.B) - int(c.B)
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return uint8(best)
}

// channel extracts one RGBA channel by index 0..3.
func channel(c Color, ch int) uint8 {
	switch ch {
	case 0:
		return c.R
	case 1:
		return c.G
	case 2:
		return c.B
	default:
		return c.A
	}
}

// medianCut reduces a distinct color set to at most target representatives.
// The bucket with the largest per-channel range splits along its widest
// channel, bisected at the midpoint by count, until target buckets exist or
// nothing can split. Each bucket collapses to the rounded average of its
// members. All state is local to the loop so repeated runs on the same input
// are identical.
func medianCut(colors []Color, target int) []Color {
	buckets := [][]Color{colors}
	for len(buckets) < target {
		bi, ch := widestBucket(buckets)
		if bi < 0 {
			break
		}
		b := buckets[bi]
		sort.SliceStable(b, func(i, j int) bool {
			return channel(b[i], ch) < channel(b[j], ch)
		})
		mid := len(b) / 2
		buckets[bi] = b[:mid]
		buckets = append(buckets, b[mid:])
	}

	out := make([]Color, len(buckets))
	for i, b := range buckets {
		out[i] = averageColor(b)
	}
	return out
}

// widestBucket finds the splittable bucket with the largest channel range
// and that channel. Returns -1 when no bucket of size >= 2 has any spread.
func widestBucket(buckets [][]Color) (int, int) {
	bestBucket, bestChannel, bestRange := -1, 0, 0
	for i, b := range buckets {
		if len(b) < 2 {
			continue
		}
		for ch := 0; ch < 4; ch++ {
			lo, hi := channel(b[0], ch), channel(b[0], ch)
			for _, c := range b[1:] {
				v := channel(c, ch)
				if v < lo {
					lo = v
				}
				if v > hi {
					hi = v
				}
			}
			if r := int(hi) - int(lo); r > bestRange {
				bestBucket, bestChannel, bestRange = i, ch, r
			}
		}
	}
	return bestBucket, bestChannel
}

func averageColor(b []Color) Color {
	var r, g, bl, a int
	for _, c := range b {
		r += int(c.R)
		g += int(c.G)
		bl += int(c.B)
		a += int(c.A)
	}
	n := len(b)
	return Color{
		R: clampChannel(float64(r) / float64(n)),
		G: clampChannel(float64(g) / float64(n)),
		B: clampChannel(float64(bl) / float64(n)),
		A: clampChannel(float64(a) / float64(n)),
	}
}
