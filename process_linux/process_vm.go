//go:build linux

package process_linux

import (
	"procmem/process"

	"golang.org/x/sys/unix"
)

// Kernel entry points, swapped out in tests to simulate short transfers.
var (
	processVMReadv  = unix.ProcessVMReadv
	processVMWritev = unix.ProcessVMWritev
)

// process_vm_readv copies remote -> local as described by tb. The count and
// errno are returned exactly as the kernel reported them.
func process_vm_readv(pid process.ProcessID, tb *transferBuffer) (int, error) {
	return processVMReadv(int(pid), tb.local[:], tb.remote[:], 0)
}

// process_vm_writev copies local -> remote as described by tb
func process_vm_writev(pid process.ProcessID, tb *transferBuffer) (int, error) {
	return processVMWritev(int(pid), tb.local[:], tb.remote[:], 0)
}

func transferError(op string, addr process.ProcessMemoryAddress, requested, n int, err error) error {
	if err != nil || n < 0 {
		n = 0
	}
	return &process.TransferError{
		Op:          op,
		Address:     addr,
		Requested:   requested,
		Transferred: n,
		Err:         err,
	}
}
