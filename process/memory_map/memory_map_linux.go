//go:build linux

package memory_map

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// DefaultProcRoot is where procfs is normally mounted
const DefaultProcRoot = "/proc"

// LinuxMemoryMap implements MemoryMap for Linux
type LinuxMemoryMap struct {
	ProcRoot string
}

// NewLinuxMemoryMap creates a new LinuxMemoryMap reading from procRoot, or
// from /proc when procRoot is empty.
func NewLinuxMemoryMap(procRoot string) *LinuxMemoryMap {
	if procRoot == "" {
		procRoot = DefaultProcRoot
	}
	return &LinuxMemoryMap{ProcRoot: procRoot}
}

// MapsPath returns the maps listing path for pid
func (l *LinuxMemoryMap) MapsPath(pid int) string {
	return filepath.Join(l.ProcRoot, strconv.Itoa(pid), "maps")
}

// ReadMemoryMap reads and parses the memory map for a process from /proc/[pid]/maps
func (l *LinuxMemoryMap) ReadMemoryMap(pid int) ([]MemoryMapItem, error) {
	file, err := os.Open(l.MapsPath(pid))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTargetUnavailable, err)
	}
	defer file.Close()

	return ParseMemoryMap(file)
}
