package embeddings

import (
	"fmt"
	"os"
	"syscall"
)

// mmapFile is a read-only memory mapping of a file. Callers must unmap
// when finished with the data.
type mmapFile struct {
	data []byte
}

func mmapOpen(path string) (*mmapFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	size := info.Size()
	if size == 0 {
		return &mmapFile{data: make([]byte, 0)}, nil
	}
	if size != int64(int(size)) {
		return nil, fmt.Errorf("%s: size %d does not fit in memory", path, size)
	}

	conn, err := f.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("syscall conn for %s: %w", path, err)
	}
	var data []byte
	ctrlErr := conn.Control(func(fd uintptr) {
		data, err = syscall.Mmap(int(fd), 0, int(size), syscall.PROT_READ, syscall.MAP_SHARED)
	})
	if ctrlErr != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, ctrlErr)
	}
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	return &mmapFile{data: data}, nil
}

func (m *mmapFile) unmap() {
	if len(m.data) > 0 {
		syscall.Munmap(m.data)
	}
}
