//go:build !darwin && !linux

package webcodecs

// NativeLibraryAvailable always reports false on platforms without
// dlopen support; providers fall back to their own availability checks.
func NativeLibraryAvailable(names ...string) bool { return false }

// NativeLibrarySearchPaths returns nil on platforms without dlopen
// support.
func NativeLibrarySearchPaths() []string { return nil }
