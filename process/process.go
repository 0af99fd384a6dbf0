// Package process provides interfaces and types for cross-process memory access
package process

import (
	"errors"
	"fmt"

	"procmem/process/memory_map"
)

var (
	// ErrProcessNotOpen marks a handle that was never given a valid PID. It is
	// always wrapped by ErrTransferIncomplete or ErrTargetUnavailable.
	ErrProcessNotOpen = errors.New("process not open")

	// ErrTransferIncomplete is returned when the kernel moved fewer bytes than
	// requested, or none at all. Partial transfers are never accepted.
	ErrTransferIncomplete = errors.New("transfer incomplete")

	// Re-exported from memory_map so callers only need this package.
	ErrTargetUnavailable = memory_map.ErrTargetUnavailable
	ErrMalformedMapEntry = memory_map.ErrMalformedMapEntry
)

// TransferError describes a read or write that did not move the requested
// number of bytes.
type TransferError struct {
	Op          string // "read" or "write"
	Address     ProcessMemoryAddress
	Requested   int
	Transferred int
	Err         error // errno reported by the kernel, nil on a short count
}

func (e *TransferError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %d bytes at %s: %s (transferred %d): %v",
			e.Op, e.Requested, e.Address.ToString(), ErrTransferIncomplete, e.Transferred, e.Err)
	}
	return fmt.Sprintf("%s %d bytes at %s: %s (transferred %d)",
		e.Op, e.Requested, e.Address.ToString(), ErrTransferIncomplete, e.Transferred)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

func (e *TransferError) Is(target error) bool {
	return target == ErrTransferIncomplete
}
