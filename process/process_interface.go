package process

import (
	"procmem/process/memory_map"
)

// Process is the interface that defines operations for interacting with a system process
type Process interface {
	// GetPID returns the process ID
	GetPID() ProcessID

	// Modules returns the file-backed modules of the process keyed by name.
	// The table is built on first use and never refreshed afterwards.
	Modules() (map[string]Module, error)

	// GetMemoryMap reads a fresh copy of the memory map
	GetMemoryMap() ([]memory_map.MemoryMapItem, error)

	// Read fills buf with len(buf) bytes read from addr
	Read(addr ProcessMemoryAddress, buf []byte) error

	// Write copies data to addr
	Write(addr ProcessMemoryAddress, data []byte) error

	// ReadMemory reads size bytes from the process at the specified address
	ReadMemory(addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error)
}
