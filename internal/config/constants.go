package config

import "strings"

const SourceFileExt = ".n"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".n", ".neon"}

// Built-in global names. The analyzer pre-defines these; the VM binds the
// corresponding native namespaces at startup.
const (
	MathGlobalName = "Math"
	FileGlobalName = "File"
	DbGlobalName   = "Db"
	UuidGlobalName = "Uuid"
	ArgsGlobalName = "args"
)

// Built-in function names
const (
	ClockFuncName = "clock"
)

// VM limits. StackMax and FramesMax bound a single run; a script that
// exceeds them fails with a runtime error instead of exhausting memory.
const (
	DefaultStackMax  = 16384
	DefaultFramesMax = 256
)

// HasSourceExt reports whether path ends in a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// TrimSourceExt removes a recognized source extension from name, if any.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}
