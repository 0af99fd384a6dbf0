package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"procmem/hexdump"
	"procmem/process"
	"procmem/process/memory_map"
)

func main() {
	pidFlag := flag.Int("pid", 0, "Process ID to inspect")
	procFlag := flag.String("proc", memory_map.DefaultProcRoot, "procfs mount point")
	addrFlag := flag.String("addr", "", "Hex address to dump (e.g. 7f0000001000)")
	sizeFlag := flag.Uint("size", 64, "Number of bytes to dump at -addr")
	flag.Parse()

	if *pidFlag <= 0 {
		fmt.Println("Error: --pid is required")
		flag.Usage()
		os.Exit(1)
	}

	proc := getProcess(*pidFlag, *procFlag)

	modules, err := proc.Modules()
	if err != nil {
		fmt.Printf("Error reading modules of process %d: %v\n", *pidFlag, err)
		os.Exit(1)
	}

	printModules(modules)

	if *addrFlag == "" {
		return
	}

	addr, err := strconv.ParseUint(strings.TrimPrefix(*addrFlag, "0x"), 16, 64)
	if err != nil {
		fmt.Printf("Error parsing address %q: %v\n", *addrFlag, err)
		os.Exit(1)
	}

	if err := dump(proc, process.ProcessMemoryAddress(addr), process.ProcessMemorySize(*sizeFlag)); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func printModules(modules map[string]process.Module) {
	list := make([]process.Module, 0, len(modules))
	for _, m := range modules {
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Base < list[j].Base
	})

	fmt.Printf("%d modules:\n", len(list))
	for _, m := range list {
		fmt.Printf("  %016x %10x  %s\n", uint64(m.Base), uint(m.Size), m.Name)
	}
}

func dump(proc process.Process, addr process.ProcessMemoryAddress, size process.ProcessMemorySize) error {
	mm, err := proc.GetMemoryMap()
	if err != nil {
		return err
	}

	region := memory_map.FindRegion(uint64(addr), mm)
	if region == nil {
		return fmt.Errorf("address %s is not mapped", addr.ToString())
	}
	fmt.Printf("Region: %x-%x %s %s %s\n", region.Address, region.End(), region.Perms, hexdump.RegionKind(*region), region.Path)

	if !region.IsReadable() {
		return fmt.Errorf("region at %s is not readable", addr.ToString())
	}

	data, err := proc.ReadMemory(addr, size)
	if err != nil {
		return err
	}

	fmt.Print(hexdump.HexdumpBasic(data, uint64(addr), mm))
	return nil
}
