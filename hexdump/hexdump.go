package hexdump

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"procmem/process"
	"procmem/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
)

// HexDumpOptions defines options for customizing the hexdump output
type HexDumpOptions struct {
	// BytesPerLine defines the number of bytes to display per line
	BytesPerLine int

	// StartAddress is the address of the first byte
	StartAddress uint64

	// ShowASCII determines whether to show the ASCII representation
	ShowASCII bool

	// ShowPointers annotates 8-byte words that point into MemoryMap
	ShowPointers bool

	// MemoryMap must be sorted by address (memory_map.SortByAddress)
	MemoryMap []memory_map.MemoryMapItem

	// Plain disables ANSI colors
	Plain bool

	OffsetColor       coloransi.ColorCode
	HexColor          coloransi.ColorCode
	ASCIIColor        coloransi.ColorCode
	NonPrintableColor coloransi.ColorCode
	ZeroColor         coloransi.ColorCode
	PointerColor      coloransi.ColorCode
}

// DefaultOptions returns the default hexdump options
func DefaultOptions() HexDumpOptions {
	return HexDumpOptions{
		BytesPerLine:      16,
		ShowASCII:         true,
		OffsetColor:       coloransi.Cyan,
		HexColor:          coloransi.Green,
		ASCIIColor:        coloransi.White,
		NonPrintableColor: coloransi.Red,
		ZeroColor:         coloransi.BrightBlack,
		PointerColor:      coloransi.Yellow,
	}
}

// Dump creates a hex dump of the given data with specified options
func Dump(data []byte, options HexDumpOptions) string {
	var buffer bytes.Buffer
	DumpToWriter(&buffer, data, options)
	return buffer.String()
}

// DumpToWriter writes a hex dump of the given data to the specified writer
func DumpToWriter(writer io.Writer, data []byte, options HexDumpOptions) {
	if options.BytesPerLine <= 0 {
		options.BytesPerLine = 16
	}

	for offset := 0; offset < len(data); offset += options.BytesPerLine {
		end := min(offset+options.BytesPerLine, len(data))
		formatLine(writer, data[offset:end], options.StartAddress+uint64(offset), options)
	}
}

func (o HexDumpOptions) paint(color coloransi.ColorCode, s string) string {
	if o.Plain {
		return s
	}
	return coloransi.Foreground(color, s)
}

// formatLine writes one line:
//
//	<address>  00 01 02 03 04 05 06 07 | 08 09 0a 0b 0c 0d 0e 0f | ........ ........ | <pointers>
//
// Short lines are padded so the ASCII column stays aligned.
func formatLine(writer io.Writer, line []byte, addr uint64, o HexDumpOptions) {
	half := o.BytesPerLine / 2

	fmt.Fprint(writer, o.paint(o.OffsetColor, fmt.Sprintf("%016x", addr)), "  ")

	for i := 0; i < o.BytesPerLine; i++ {
		if i > 0 {
			if i == half {
				fmt.Fprint(writer, " | ")
			} else {
				fmt.Fprint(writer, " ")
			}
		}

		if i >= len(line) {
			fmt.Fprint(writer, "  ")
			continue
		}

		color := o.HexColor
		if line[i] == 0 {
			color = o.ZeroColor
		}
		fmt.Fprint(writer, o.paint(color, fmt.Sprintf("%02x", line[i])))
	}

	if o.ShowASCII {
		fmt.Fprint(writer, " | ")
		for i, b := range line {
			if i == half && i > 0 {
				fmt.Fprint(writer, " ")
			}
			switch {
			case b == 0:
				fmt.Fprint(writer, o.paint(o.ZeroColor, "."))
			case b < 0x20 || b > 0x7e:
				fmt.Fprint(writer, o.paint(o.NonPrintableColor, "."))
			default:
				fmt.Fprint(writer, o.paint(o.ASCIIColor, string(rune(b))))
			}
		}
	}

	if o.ShowPointers {
		var pointers []string
		for off := 0; off+8 <= len(line); off += 8 {
			if p := describePointer(binary.LittleEndian.Uint64(line[off:]), o.MemoryMap); p != "" {
				pointers = append(pointers, o.paint(o.PointerColor, p))
			}
		}
		if len(pointers) > 0 {
			fmt.Fprint(writer, " | ", strings.Join(pointers, " "))
		}
	}

	fmt.Fprintln(writer)
}

// describePointer returns "0x<ptr> <module>+0x<off> <kind>" when ptr lands in a
// mapped region, or "".
func describePointer(ptr uint64, memoryMap []memory_map.MemoryMapItem) string {
	region := memory_map.FindRegion(ptr, memoryMap)
	if region == nil {
		return ""
	}

	name := "anon"
	if region.Path != "" {
		name = process.ModuleName(region.Path)
	}

	return fmt.Sprintf("0x%x %s+0x%x %s", ptr, name, ptr-region.Address, RegionKind(*region))
}

// RegionKind classifies a region by its permissions
func RegionKind(region memory_map.MemoryMapItem) string {
	switch {
	case region.IsExecutable():
		return "code"
	case region.IsWritable():
		return "data"
	case region.IsReadable():
		return "rodata"
	default:
		return "noaccess"
	}
}

// HexdumpBasic dumps data read from addr, annotating words that point into mm
func HexdumpBasic(data []byte, addr uint64, mm []memory_map.MemoryMapItem) string {
	options := DefaultOptions()
	options.StartAddress = addr
	options.ShowPointers = true
	options.MemoryMap = mm

	return Dump(data, options)
}
