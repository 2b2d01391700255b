package utils

import (
	"fmt"
	"os"

	"github.com/voxellaneous/vxl/api"
)

// RunVXL2GLB converts a VXL1 artifact to a .glb via the greedy mesher.
func RunVXL2GLB(inPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	glb, err := api.VXLToGLB(data)
	if err != nil {
		return fmt.Errorf("failed to convert: %w", err)
	}
	if err := os.WriteFile(outPath, glb, 0o644); err != nil {
		return err
	}
	fmt.Printf(".glb saved (%d bytes)\n", len(glb))
	return nil
}
