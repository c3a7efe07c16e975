package memmap

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// FileProvider maps a file into the process's address space with
// MAP_SHARED, so the mapped bytes are the durable, other-process-visible
// copy of a region: writes through the returned slice land directly on
// disk (or tmpfs, for /dev/shm paths) without an explicit flush, modulo
// the kernel's own writeback timing.
type FileProvider struct {
	path string
	file *os.File
	data []byte
	size uint32
}

// FileOptions configures opening or creating a file-backed region.
type FileOptions struct {
	Path   string
	Size   uint32
	Create bool
}

// DefaultPath returns /dev/shm/<name> when tmpfs is available, falling
// back to the OS temp directory otherwise.
func DefaultPath(name string) string {
	if _, err := os.Stat("/dev/shm"); err == nil {
		return filepath.Join("/dev/shm", name)
	}
	return filepath.Join(os.TempDir(), name)
}

// OpenFile opens or creates a file-backed region mapping.
func OpenFile(opts FileOptions) (*FileProvider, error) {
	if opts.Path == "" {
		return nil, ErrNoPath
	}

	path := filepath.Clean(opts.Path)
	flags := os.O_RDWR
	if opts.Create {
		flags |= os.O_CREATE
	}

	file, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return nil, fmt.Errorf("memmap: open %s: %w", path, err)
	}

	if opts.Create {
		if opts.Size == 0 {
			_ = file.Close()
			return nil, ErrNotCreate
		}
		if err := file.Truncate(int64(opts.Size)); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("memmap: truncate %s: %w", path, err)
		}
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("memmap: stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		_ = file.Close()
		return nil, ErrZeroSize
	}
	if info.Size()%pageSize != 0 {
		_ = file.Close()
		return nil, ErrMisaligned
	}
	size := uint32(info.Size())

	data, err := unix.Mmap(int(file.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("memmap: mmap %s: %w", path, err)
	}

	return &FileProvider{path: path, file: file, data: data, size: size}, nil
}

func (f *FileProvider) Bytes() []byte { return f.data }
func (f *FileProvider) Fd() int       { return int(f.file.Fd()) }
func (f *FileProvider) Size() uint32  { return f.size }

// Sync flushes dirty pages to the backing file, blocking until complete.
func (f *FileProvider) Sync() error {
	if f.data == nil {
		return nil
	}
	return unix.Msync(f.data, unix.MS_SYNC)
}

func (f *FileProvider) Close() error {
	var err error
	if f.data != nil {
		if unmapErr := unix.Munmap(f.data); unmapErr != nil {
			err = unmapErr
		}
		f.data = nil
	}
	if f.file != nil {
		if closeErr := f.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		f.file = nil
	}
	return err
}
