// Package mmap provides read-only memory-mapped access to store files.
//
// The record store maps its data log for full scans: decoding straight from
// the mapping avoids a read syscall per record and lets the kernel read
// ahead once the mapping is advised as sequential.
//
//	m, err := mmap.OpenSize("catalog.log", committedBytes)
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// A mapping is a snapshot of the file length at open time; bytes appended
// later are not visible. Callers must not use Bytes() after Close().
package mmap
