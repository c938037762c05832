package tabletype

import (
	"embed"
	"io/fs"
	"sync"
)

//go:embed presets/*.yaml
var embeddedPresets embed.FS

var (
	defaultOnce  sync.Once
	defaultStore *Store
	defaultErr   error
)

// EmbeddedFS returns the bundled facility-records presets.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedPresets, "presets")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}

// Default loads the embedded presets once and returns the shared immutable
// store.
func Default() (*Store, error) {
	defaultOnce.Do(func() {
		defaultStore, defaultErr = LoadFS(EmbeddedFS())
	})
	return defaultStore, defaultErr
}
