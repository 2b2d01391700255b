package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/voxellaneous/vxl/vxl"
)

// CreatePack reads .vxl artifacts and writes a zstd-compressed pack.
func CreatePack(inputFiles []string, outputFile string) error {
	if len(inputFiles) == 0 {
		return fmt.Errorf("no .vxl files provided")
	}
	type item struct {
		name string
		obj  *vxl.VoxelObject
		err  error
	}
	items := make([]item, len(inputFiles))

	var wg sync.WaitGroup
	for i := range inputFiles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := inputFiles[i]
			b, err := os.ReadFile(path)
			if err != nil {
				items[i].err = err
				return
			}
			obj, err := vxl.Decode(b)
			if err != nil {
				items[i].err = fmt.Errorf("%s: %w", path, err)
				return
			}
			items[i] = item{name: filepath.Base(path), obj: obj}
		}(i)
	}
	wg.Wait()

	pack := &vxl.Pack{Entries: make([]vxl.PackEntry, len(items))}
	for i, it := range items {
		if it.err != nil {
			return it.err
		}
		pack.Entries[i] = vxl.PackEntry{Name: it.name, Object: it.obj}
	}

	start := time.Now()
	data, err := pack.Marshal(vxl.PackCompZstd)
	if err != nil {
		return err
	}
	fmt.Printf("pack compression took %d ms\n", time.Since(start).Milliseconds())
	return os.WriteFile(outputFile, data, 0o644)
}

// UnpackToDir writes every pack entry into outputDir as a .vxl artifact.
func UnpackToDir(packFile, outputDir string) error {
	data, err := os.ReadFile(packFile)
	if err != nil {
		return err
	}
	pack, _, err := vxl.UnmarshalPack(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(pack.Entries))
	for _, e := range pack.Entries {
		wg.Add(1)
		go func(e vxl.PackEntry) {
			defer wg.Done()
			b, err := vxl.Encode(e.Object)
			if err != nil {
				errCh <- fmt.Errorf("%s: %w", e.Name, err)
				return
			}
			if err := os.WriteFile(filepath.Join(outputDir, e.Name), b, 0o644); err != nil {
				errCh <- err
			}
		}(e)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}
