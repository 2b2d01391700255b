//go:build js && wasm

package main

import (
	"fmt"
	"syscall/js"

	"github.com/voxellaneous/vxl/api"
	"github.com/voxellaneous/vxl/vxl"
)

func vxl2glb(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing vxl bytes")
	}
	buf := make([]byte, args[0].Get("length").Int())
	js.CopyBytesToGo(buf, args[0])
	out, err := api.VXLToGLB(buf)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	uint8arr := js.Global().Get("Uint8Array").New(len(out))
	js.CopyBytesToJS(uint8arr, out)
	return uint8arr
}

func vxlInfo(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing vxl bytes")
	}
	buf := make([]byte, args[0].Get("length").Int())
	js.CopyBytesToGo(buf, args[0])
	obj, err := vxl.Decode(buf)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	info := js.Global().Get("Object").New()
	dims := js.Global().Get("Array").New(3)
	for i, d := range obj.Dims {
		dims.SetIndex(i, d)
	}
	info.Set("dims", dims)
	info.Set("paletteSize", len(obj.Palette))
	palette := js.Global().Get("Array").New(len(obj.Palette))
	for i, c := range obj.Palette {
		palette.SetIndex(i, fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A))
	}
	info.Set("palette", palette)
	return info
}

func packVxls(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing files object")
	}
	filesObj := args[0]
	files := map[string][]byte{}
	keys := js.Global().Get("Object").Call("keys", filesObj)
	for i := 0; i < keys.Length(); i++ {
		k := keys.Index(i).String()
		v := filesObj.Get(k)
		b := make([]byte, v.Get("length").Int())
		js.CopyBytesToGo(b, v)
		files[k] = b
	}
	out, err := api.PackVXLs(files)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	uint8arr := js.Global().Get("Uint8Array").New(len(out))
	js.CopyBytesToJS(uint8arr, out)
	return uint8arr
}

func unpackVxlpack(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing pack bytes")
	}
	buf := make([]byte, args[0].Get("length").Int())
	js.CopyBytesToGo(buf, args[0])
	files, err := api.UnpackVXLToMemory(buf)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	result := js.Global().Get("Object").New()
	for name, b := range files {
		arr := js.Global().Get("Uint8Array").New(len(b))
		js.CopyBytesToJS(arr, b)
		result.Set(name, arr)
	}
	return result
}

func main() {
	js.Global().Set("vxl2glb", js.FuncOf(vxl2glb))
	js.Global().Set("vxlInfo", js.FuncOf(vxlInfo))
	js.Global().Set("packVxls", js.FuncOf(packVxls))
	js.Global().Set("unpackVxlpack", js.FuncOf(unpackVxlpack))
	select {}
}
