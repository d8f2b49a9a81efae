//go:build js && wasm

package reporter

// Browsers have no writable filesystem.
func defaultFileSystem() FileSystem {
	return nil
}
