//go:build linux

package process_linux

import (
	"fmt"
	"math"

	"procmem/process"
)

// Read fills buf with len(buf) bytes from addr in the target process. Anything
// short of a full read is returned as a *process.TransferError.
func (p *LinuxProcess) Read(addr process.ProcessMemoryAddress, buf []byte) error {
	if p.pid <= 0 {
		return transferError("read", addr, len(buf), 0, process.ErrProcessNotOpen)
	}

	if len(buf) == 0 {
		return nil
	}

	tb := acquireTransferBuffer()
	defer tb.release()

	tb.set(buf, addr)

	n, err := process_vm_readv(p.pid, tb)
	if err != nil || n != len(buf) {
		return transferError("read", addr, len(buf), n, err)
	}

	return nil
}

// ReadMemory reads memory from the process at the specified address
func (p *LinuxProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if uint64(size) > math.MaxInt {
		return nil, fmt.Errorf("read %s at %s: %w: size exceeds the address space", size.ToString(), addr.ToString(), process.ErrTransferIncomplete)
	}

	data := make([]byte, size)
	if err := p.Read(addr, data); err != nil {
		return nil, err
	}
	return data, nil
}
