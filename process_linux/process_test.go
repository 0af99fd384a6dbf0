//go:build linux

package process_linux

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"procmem/process"
	"procmem/process/memory_map"

	"github.com/stretchr/testify/require"
)

const testMaps = `55d4a3c00000-55d4a3c02000 r--p 00000000 08:01 393228                     /usr/bin/cat
55d4a3c02000-55d4a3c07000 r-xp 00002000 08:01 393228                     /usr/bin/cat
55d4a4a1e000-55d4a4a3f000 rw-p 00000000 00:00 0                          [heap]
7f0000000000-7f0000021000 r--p 00001000 08:01 1234                       /lib/x86_64-linux-gnu/libc.so.6
7f1000000000-7f1000004000 r-xp 00004000 08:01 777                        /home/user/my app.bin
7f3000000000-7f3000008000 r-xp 00008000 08:01 778                        /opt/a/libdup.so
7f4000000000-7f4000002000 r-xp 00002000 08:01 779                        /opt/b/libdup.so
`

// countingMemoryMap parses testMaps and counts how often it is asked to
type countingMemoryMap struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (c *countingMemoryMap) ReadMemoryMap(pid int) ([]memory_map.MemoryMapItem, error) {
	c.calls.Add(1)
	time.Sleep(c.delay)
	if c.err != nil {
		return nil, c.err
	}
	return memory_map.ParseMemoryMap(strings.NewReader(testMaps))
}

type moduleView struct {
	Base process.ProcessMemoryAddress
	Size process.ProcessMemorySize
}

func view(modules map[string]process.Module) map[string]moduleView {
	out := make(map[string]moduleView, len(modules))
	for name, m := range modules {
		out[name] = moduleView{Base: m.Base, Size: m.Size}
	}
	return out
}

func TestModules(t *testing.T) {
	mm := &countingMemoryMap{}
	p := New(4242, WithMemoryMap(mm))

	modules, err := p.Modules()
	require.NoError(t, err)

	require.Equal(t, map[string]moduleView{
		"cat":        {Base: 0x55d4a3c02000, Size: 0x5000},
		"libc.so.6":  {Base: 0x7f0000000000, Size: 0x21000},
		"my app.bin": {Base: 0x7f1000000000, Size: 0x4000},
		"libdup.so":  {Base: 0x7f4000000000, Size: 0x2000},
	}, view(modules))

	for name, m := range modules {
		require.Equal(t, name, m.Name)
		require.Same(t, p, m.Process)
	}
}

func TestModulesIsSnapshot(t *testing.T) {
	mm := &countingMemoryMap{}
	p := New(4242, WithMemoryMap(mm))

	first, err := p.Modules()
	require.NoError(t, err)
	delete(first, "cat")

	second, err := p.Modules()
	require.NoError(t, err)
	require.Contains(t, second, "cat")
	require.Equal(t, int32(1), mm.calls.Load())
}

func TestModulesConcurrentFirstAccess(t *testing.T) {
	mm := &countingMemoryMap{delay: 20 * time.Millisecond}
	p := New(4242, WithMemoryMap(mm))

	const callers = 32
	results := make([]map[string]moduleView, callers)
	errs := make([]error, callers)

	var start, wg sync.WaitGroup
	start.Add(1)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start.Wait()
			modules, err := p.Modules()
			results[i], errs[i] = view(modules), err
		}(i)
	}
	start.Done()
	wg.Wait()

	require.Equal(t, int32(1), mm.calls.Load())
	for i := range results {
		require.NoError(t, errs[i])
		require.Len(t, results[i], 4)
		require.Equal(t, results[0], results[i])
	}
}

func TestModulesErrorIsCached(t *testing.T) {
	mm := &countingMemoryMap{err: errors.New("boom")}
	p := New(4242, WithMemoryMap(mm))

	_, err1 := p.Modules()
	_, err2 := p.Modules()
	require.Error(t, err1)
	require.Equal(t, err1, err2)
	require.Equal(t, int32(1), mm.calls.Load())
}

func TestModulesFromProcRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "4242"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "4242", "maps"), []byte(testMaps), 0644))

	modules, err := New(4242, WithProcRoot(root)).Modules()
	require.NoError(t, err)
	require.Contains(t, modules, "libc.so.6")
	require.Contains(t, modules, "my app.bin")
}

func TestModulesTargetUnavailable(t *testing.T) {
	p := New(4242, WithProcRoot(t.TempDir()))

	_, err := p.Modules()
	require.ErrorIs(t, err, process.ErrTargetUnavailable)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestModulesMalformed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "4242"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "4242", "maps"), []byte(testMaps+"7f00-7f10 r--p\n"), 0644))

	_, err := New(4242, WithProcRoot(root)).Modules()
	require.ErrorIs(t, err, process.ErrMalformedMapEntry)
}

func TestModulesSelf(t *testing.T) {
	exe, err := os.Readlink("/proc/self/exe")
	require.NoError(t, err)

	p := New(process.ProcessID(os.Getpid()))
	require.Equal(t, process.ProcessID(os.Getpid()), p.GetPID())

	modules, err := p.Modules()
	require.NoError(t, err)
	require.Contains(t, modules, filepath.Base(exe))

	m := modules[filepath.Base(exe)]
	require.NotZero(t, m.Base)
	require.NotZero(t, m.Size)
}

func TestGetMemoryMap(t *testing.T) {
	mm := &countingMemoryMap{}
	p := New(4242, WithMemoryMap(mm))

	first, err := p.GetMemoryMap()
	require.NoError(t, err)
	require.Len(t, first, 7)
	for i := 1; i < len(first); i++ {
		require.Less(t, first[i-1].Address, first[i].Address)
	}

	_, err = p.GetMemoryMap()
	require.NoError(t, err)
	require.Equal(t, int32(2), mm.calls.Load())
}
