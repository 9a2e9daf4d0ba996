// Package shm provides helpers for dealing with shared memory.
package shm

import (
	"os"

	"golang.org/x/sys/unix"
)

// Create creates an anonymous, memory-backed file. The name is only
// used for debugging and does not need to be unique.
func Create(name string) (*os.File, error) {
	fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err != nil {
		return nil, err
	}

	return os.NewFile(uintptr(fd), name), nil
}

type Mmap []byte

// Map maps size bytes of file into memory.
func Map(file *os.File, size int, prot int) (mmap Mmap, err error) {
	sc, err := file.SyscallConn()
	if err != nil {
		return nil, err
	}

	cerr := sc.Control(func(fd uintptr) {
		m, merr := unix.Mmap(int(fd), 0, size, prot, unix.MAP_SHARED)
		mmap, err = Mmap(m), merr
	})
	if cerr != nil {
		return nil, cerr
	}

	return mmap, err
}

func (mmap Mmap) Unmap() error {
	return unix.Munmap(mmap)
}
