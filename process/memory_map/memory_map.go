package memory_map

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrTargetUnavailable is returned when the memory map listing cannot be
	// opened or read.
	ErrTargetUnavailable = errors.New("target unavailable")

	// ErrMalformedMapEntry is returned when a line does not have the
	// "start-end perms offset dev inode [path]" layout.
	ErrMalformedMapEntry = errors.New("malformed memory map entry")
)

// MemoryMapItem represents a memory region in a process's address space
type MemoryMapItem struct {
	Address uint64 // The starting address of the memory region
	Size    uint   // The size of the memory region in bytes
	Perms   string // Permissions (e.g., "r-xp" for read, execute, private)
	Offset  int64  // Offset into the backing file
	Dev     string // Device as major:minor
	Inode   uint64 // Inode of the backing file, 0 for anonymous mappings
	Path    string // Backing path or pseudo name such as [heap], may be empty
}

// String returns a string representation of the memory map item
func (mmItem MemoryMapItem) String() string {
	return fmt.Sprintf("Address: %x, Size: %d, Perms: %s, Offset: %x, Path: %s",
		mmItem.Address, mmItem.Size, mmItem.Perms, mmItem.Offset, mmItem.Path)
}

// End returns the first address past the region
func (mmItem MemoryMapItem) End() uint64 {
	return mmItem.Address + uint64(mmItem.Size)
}

func (mmItem MemoryMapItem) IsReadable() bool {
	return len(mmItem.Perms) > 0 && mmItem.Perms[0] == 'r'
}

func (mmItem MemoryMapItem) IsWritable() bool {
	return len(mmItem.Perms) > 1 && mmItem.Perms[1] == 'w'
}

func (mmItem MemoryMapItem) IsExecutable() bool {
	return len(mmItem.Perms) > 2 && mmItem.Perms[2] == 'x'
}

// MemoryMap reads the memory map listing of a process
type MemoryMap interface {
	// ReadMemoryMap reads and parses the memory map for a process
	ReadMemoryMap(pid int) ([]MemoryMapItem, error)
}

// ParseLine parses a single line of a /proc/[pid]/maps listing.
//
// The five leading columns are separated by exactly one space. Everything
// after the inode column, minus the alignment padding, is the path, so
// spaces inside the path are kept as they are.
func ParseLine(line string) (MemoryMapItem, error) {
	var cols [4]string
	rest := line
	for i := range cols {
		var ok bool
		cols[i], rest, ok = strings.Cut(rest, " ")
		if !ok || cols[i] == "" {
			return MemoryMapItem{}, fmt.Errorf("%w: missing column %d: %q", ErrMalformedMapEntry, i, line)
		}
	}

	inodeField, rest, _ := strings.Cut(rest, " ")
	if inodeField == "" {
		return MemoryMapItem{}, fmt.Errorf("%w: missing inode: %q", ErrMalformedMapEntry, line)
	}

	startField, endField, ok := strings.Cut(cols[0], "-")
	if !ok {
		return MemoryMapItem{}, fmt.Errorf("%w: bad address range %q", ErrMalformedMapEntry, cols[0])
	}

	start, err := strconv.ParseUint(startField, 16, 64)
	if err != nil {
		return MemoryMapItem{}, fmt.Errorf("%w: parsing start address: %w", ErrMalformedMapEntry, err)
	}

	end, err := strconv.ParseUint(endField, 16, 64)
	if err != nil {
		return MemoryMapItem{}, fmt.Errorf("%w: parsing end address: %w", ErrMalformedMapEntry, err)
	}

	if end < start {
		return MemoryMapItem{}, fmt.Errorf("%w: end %x before start %x", ErrMalformedMapEntry, end, start)
	}

	offset, err := strconv.ParseInt(cols[2], 16, 64)
	if err != nil {
		return MemoryMapItem{}, fmt.Errorf("%w: parsing file offset: %w", ErrMalformedMapEntry, err)
	}

	inode, err := strconv.ParseUint(inodeField, 10, 64)
	if err != nil {
		return MemoryMapItem{}, fmt.Errorf("%w: parsing inode: %w", ErrMalformedMapEntry, err)
	}

	return MemoryMapItem{
		Address: start,
		Size:    uint(end - start),
		Perms:   cols[1],
		Offset:  offset,
		Dev:     cols[3],
		Inode:   inode,
		Path:    strings.TrimLeft(rest, " "),
	}, nil
}

// ParseMemoryMap parses a whole maps listing. Blank lines are ignored; the
// first malformed line fails the parse.
func ParseMemoryMap(r io.Reader) ([]MemoryMapItem, error) {
	var memoryMap []MemoryMapItem

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}

		item, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		memoryMap = append(memoryMap, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTargetUnavailable, err)
	}

	return memoryMap, nil
}

// SortByAddress sorts the memory map in place, FindRegion requires it.
func SortByAddress(memoryMap []MemoryMapItem) {
	sort.Slice(memoryMap, func(i, j int) bool {
		return memoryMap[i].Address < memoryMap[j].Address
	})
}

// FindRegion returns the region containing addr in a memory map sorted by
// address, or nil.
func FindRegion(addr uint64, memoryMap []MemoryMapItem) *MemoryMapItem {
	i := sort.Search(len(memoryMap), func(i int) bool {
		return memoryMap[i].End() > addr
	})
	if i < len(memoryMap) && memoryMap[i].Address <= addr {
		return &memoryMap[i]
	}

	return nil
}
