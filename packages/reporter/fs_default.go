//go:build !(js && wasm)

package reporter

func defaultFileSystem() FileSystem {
	return OSFileSystem{}
}
