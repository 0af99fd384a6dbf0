//go:build linux

package process_linux

import (
	"sync"

	"procmem/process"

	"golang.org/x/sys/unix"
)

// transferBuffer holds the single local and remote iovec handed to
// process_vm_readv/process_vm_writev. A buffer belongs to exactly one
// in-flight transfer between acquire and release.
type transferBuffer struct {
	local  [1]unix.Iovec
	remote [1]unix.RemoteIovec
}

var transferBuffers = sync.Pool{
	New: func() any {
		return new(transferBuffer)
	},
}

func acquireTransferBuffer() *transferBuffer {
	return transferBuffers.Get().(*transferBuffer)
}

// set points both descriptors at buf and addr. Both are written before any
// syscall sees the buffer.
func (tb *transferBuffer) set(buf []byte, addr process.ProcessMemoryAddress) {
	tb.local[0].Base = &buf[0]
	tb.local[0].SetLen(len(buf))

	tb.remote[0].Base = uintptr(addr)
	tb.remote[0].Len = len(buf)
}

// release drops the reference to the caller's buffer and returns tb to the pool
func (tb *transferBuffer) release() {
	tb.local[0] = unix.Iovec{}
	tb.remote[0] = unix.RemoteIovec{}
	transferBuffers.Put(tb)
}
