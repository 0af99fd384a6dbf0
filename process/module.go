package process

import (
	"fmt"
	"strings"

	"procmem/process/memory_map"
)

// Module is a file-backed mapping inside a target process
type Module struct {
	Base    ProcessMemoryAddress // Start of the mapped region
	Process Process              // Handle the module was resolved from
	Name    string               // Final path segment of the backing file
	Size    ProcessMemorySize    // End minus start of the recorded mapping
}

// End returns the first address past the module
func (m Module) End() ProcessMemoryAddress {
	return m.Base + ProcessMemoryAddress(m.Size)
}

// Contains reports whether addr falls inside the module
func (m Module) Contains(addr ProcessMemoryAddress) bool {
	return addr >= m.Base && addr < m.End()
}

func (m Module) String() string {
	return fmt.Sprintf("%s @ %s (%s)", m.Name, m.Base.ToString(), m.Size.ToString())
}

// ModuleName returns the final path segment of path, or path itself when it
// has no slash.
func ModuleName(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}

// NewModuleTable builds the name -> Module table from parsed map entries.
//
// Only entries with a strictly positive file offset and a backing path become
// modules. When several entries share a name the later one wins; ranges are
// not merged.
func NewModuleTable(items []memory_map.MemoryMapItem, owner Process) map[string]Module {
	modules := make(map[string]Module)
	for _, item := range items {
		if item.Offset <= 0 || item.Path == "" {
			continue
		}

		name := ModuleName(item.Path)
		modules[name] = Module{
			Base:    ProcessMemoryAddress(item.Address),
			Process: owner,
			Name:    name,
			Size:    ProcessMemorySize(item.Size),
		}
	}
	return modules
}
