//go:build darwin || linux

package webcodecs

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/ebitengine/purego"
)

// Native library probing for engine providers. IsSupported answers come
// from providers, and providers backed by native codec libraries need a
// cheap, cached way to tell whether their library is actually loadable on
// this machine. The probe dlopens each candidate once and remembers the
// answer; handles stay open so a later real load hits the cache.

var (
	nativeProbeMu    sync.Mutex
	nativeProbeCache = map[string]bool{}
)

// NativeLibraryAvailable reports whether any of the named shared
// libraries can be loaded. Names are passed to dlopen as-is, so both bare
// sonames ("libopus.so.0") and absolute paths work. Results are cached
// for the process lifetime.
func NativeLibraryAvailable(names ...string) bool {
	nativeProbeMu.Lock()
	defer nativeProbeMu.Unlock()

	for _, name := range names {
		if ok, seen := nativeProbeCache[name]; seen {
			if ok {
				return true
			}
			continue
		}
		handle, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		ok := err == nil && handle != 0
		nativeProbeCache[name] = ok
		if ok {
			return true
		}
	}
	return false
}

// NativeLibrarySearchPaths returns the directories consulted for
// relative library names, honoring WEBCODECS_LIB_PATH the way native
// SDK wrappers expect.
func NativeLibrarySearchPaths() []string {
	var paths []string
	if env := os.Getenv("WEBCODECS_LIB_PATH"); env != "" {
		paths = append(paths, filepath.SplitList(env)...)
	}
	return paths
}
