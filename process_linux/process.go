//go:build linux

package process_linux

import (
	"fmt"
	"maps"
	"sync"

	"procmem/process"
	"procmem/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var _ process.Process = (*LinuxProcess)(nil)

// LinuxProcess implements the process.Process interface for Linux systems.
// It is a reference to a process it does not own: the target may exit at any
// time, which shows up as errors from Read, Write and Modules.
type LinuxProcess struct {
	pid      process.ProcessID
	log      *logger.Logger
	mm       memory_map.MemoryMap
	procRoot string

	modules func() (map[string]process.Module, error)
}

// Option configures a LinuxProcess
type Option func(*LinuxProcess)

// WithLogger replaces the default per-process logger
func WithLogger(log *logger.Logger) Option {
	return func(p *LinuxProcess) {
		p.log = log
	}
}

// WithProcRoot reads memory maps from another procfs mount than /proc
func WithProcRoot(root string) Option {
	return func(p *LinuxProcess) {
		p.procRoot = root
	}
}

// WithMemoryMap replaces the memory map source
func WithMemoryMap(mm memory_map.MemoryMap) Option {
	return func(p *LinuxProcess) {
		p.mm = mm
	}
}

// New creates a handle for pid. Nothing is read from the target until the
// first Read, Write or Modules call.
func New(pid process.ProcessID, opts ...Option) *LinuxProcess {
	p := &LinuxProcess{pid: pid}
	for _, opt := range opts {
		opt(p)
	}

	if p.log == nil {
		p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid)))
	}

	if p.mm == nil {
		p.mm = memory_map.NewLinuxMemoryMap(p.procRoot)
	}

	p.modules = sync.OnceValues(p.loadModules)

	return p
}

// GetPID returns the process ID
func (p *LinuxProcess) GetPID() process.ProcessID {
	return p.pid
}

// Modules returns the module table, building it on the first call. Later calls,
// including concurrent ones, get the same snapshot or the same error.
func (p *LinuxProcess) Modules() (map[string]process.Module, error) {
	modules, err := p.modules()
	if err != nil {
		return nil, err
	}
	return maps.Clone(modules), nil
}

func (p *LinuxProcess) loadModules() (map[string]process.Module, error) {
	if p.pid <= 0 {
		return nil, fmt.Errorf("%w: %w", process.ErrTargetUnavailable, process.ErrProcessNotOpen)
	}

	mm, err := p.mm.ReadMemoryMap(int(p.pid))
	if err != nil {
		return nil, fmt.Errorf("failed to read memory map: %w", err)
	}

	modules := process.NewModuleTable(mm, p)

	p.log.Infoln("Module table built:", len(modules), "modules from", len(mm), "regions")
	for _, m := range modules {
		p.log.Debugln("Module", m.Name, m.Base.ToString(), m.Size.ToString())
	}

	return modules, nil
}

// GetMemoryMap reads the current memory map, sorted by address. Unlike
// Modules it is not cached.
func (p *LinuxProcess) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	if p.pid <= 0 {
		return nil, fmt.Errorf("%w: %w", process.ErrTargetUnavailable, process.ErrProcessNotOpen)
	}

	mm, err := p.mm.ReadMemoryMap(int(p.pid))
	if err != nil {
		return nil, fmt.Errorf("failed to read memory map: %w", err)
	}

	memory_map.SortByAddress(mm)
	return mm, nil
}
