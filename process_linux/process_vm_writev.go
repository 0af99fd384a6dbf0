//go:build linux

package process_linux

import (
	"procmem/process"
)

// Write writes data to the process memory at the specified address. Protection
// flags are left alone; a region the kernel refuses to write fails here.
func (p *LinuxProcess) Write(addr process.ProcessMemoryAddress, data []byte) error {
	if p.pid <= 0 {
		return transferError("write", addr, len(data), 0, process.ErrProcessNotOpen)
	}

	if len(data) == 0 {
		return nil
	}

	tb := acquireTransferBuffer()
	defer tb.release()

	tb.set(data, addr)

	n, err := process_vm_writev(p.pid, tb)
	if err != nil || n != len(data) {
		return transferError("write", addr, len(data), n, err)
	}

	return nil
}
