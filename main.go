//go:build !(js && wasm)

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/voxellaneous/vxl/utils"
	"github.com/voxellaneous/vxl/vxl"
)

func usage() {
	fmt.Println("Usage: vxltool <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  glb2vxl input.glb output.vxl <resolution> [solid]  (voxelize a mesh into a .vxl artifact)")
	fmt.Println("  vxl2glb input.vxl output.glb                       (convert .vxl -> .glb using greedy mesh)")
	fmt.Println("  pack output.vxlpack input1.vxl [input2.vxl ...]    (bundle .vxl artifacts into a pack)")
	fmt.Println("  unpack input.vxlpack output_dir                    (unpack into a directory of .vxl files)")
	fmt.Println("  info input.vxl                                     (print artifact dimensions and palette size)")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "glb2vxl":
		if len(os.Args) != 5 && len(os.Args) != 6 {
			usage()
			os.Exit(1)
		}
		resolution, err := strconv.Atoi(os.Args[4])
		if err != nil || resolution < 1 {
			fmt.Println("Error: resolution must be a positive integer")
			os.Exit(1)
		}
		solid := len(os.Args) == 6 && os.Args[5] == "solid"
		if err := utils.RunGLB2VXL(os.Args[2], os.Args[3], resolution, solid); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	case "vxl2glb":
		if len(os.Args) != 4 {
			usage()
			os.Exit(1)
		}
		if err := utils.RunVXL2GLB(os.Args[2], os.Args[3]); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	case "pack":
		if len(os.Args) < 4 {
			usage()
			os.Exit(1)
		}
		if err := utils.CreatePack(os.Args[3:], os.Args[2]); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	case "unpack":
		if len(os.Args) != 4 {
			usage()
			os.Exit(1)
		}
		if err := utils.UnpackToDir(os.Args[2], os.Args[3]); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	case "info":
		if len(os.Args) != 3 {
			usage()
			os.Exit(1)
		}
		data, err := os.ReadFile(os.Args[2])
		if err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		obj, err := vxl.Decode(data)
		if err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		filled := 0
		for _, v := range obj.Indices {
			if v != 0 {
				filled++
			}
		}
		fmt.Printf("dims: %dx%dx%d, palette: %d entries, voxels: %d/%d\n",
			obj.Dims[0], obj.Dims[1], obj.Dims[2], len(obj.Palette), filled, obj.Volume())
	default:
		usage()
		os.Exit(1)
	}

	fmt.Println("Operation completed!")
}
