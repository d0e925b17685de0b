// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: Represents an open file with read/write/sync capabilities
//   - [FileSystem]: Abstracts filesystem operations (open, remove, rename, etc.)
//
// # Implementations
//
//   - [LocalFS]: Production implementation using standard os package
//   - [FaultyFS]: Test utility for fault injection (simulate I/O errors)
//
// # Usage
//
// Production code should use fs.Default (which is [LocalFS]):
//
//	file, err := fs.Default.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
//
// Tests can inject [FaultyFS] to simulate failures of the record store:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".idx", fs.Fault{FailOnSync: true})
//	// pass ffs to store.Open via Options.FS
//
// This package intentionally does NOT include context.Context parameters.
// Local filesystem operations are non-interruptible at the syscall level.
package fs
