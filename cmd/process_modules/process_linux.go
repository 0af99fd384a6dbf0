package main

import (
	"procmem/process"
	"procmem/process_linux"
)

func getProcess(pid int, procRoot string) process.Process {
	return process_linux.New(process.ProcessID(pid), process_linux.WithProcRoot(procRoot))
}
