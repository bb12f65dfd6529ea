package regport

import (
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

const pageSize = 4096

// DevMem maps the pages of physical memory holding the registers through
// /dev/mem. Mappings are kept until Close.
type DevMem struct {
	mutex sync.Mutex
	file  *os.File
	pages map[uint32][]byte
}

// OpenDevMem opens the physical memory device, usually /dev/mem.
func OpenDevMem(path string) (*DevMem, error) {
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return nil, &Error{Op: "open", Err: err}
	}

	return &DevMem{
		file:  f,
		pages: make(map[uint32][]byte),
	}, nil
}

func (d *DevMem) word(address uint32) (*uint32, error) {
	if address%4 != 0 {
		return nil, unix.EINVAL
	}

	base := address &^ (pageSize - 1)
	page, ok := d.pages[base]
	if !ok {
		var err error
		page, err = unix.Mmap(int(d.file.Fd()), int64(base), pageSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			return nil, err
		}
		d.pages[base] = page
	}

	return (*uint32)(unsafe.Pointer(&page[address-base])), nil
}

func (d *DevMem) Read(address uint32) (uint32, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.pages == nil {
		return 0, readError(address, os.ErrClosed)
	}

	w, err := d.word(address)
	if err != nil {
		return 0, readError(address, err)
	}
	return *w, nil
}

func (d *DevMem) Write(address uint32, value uint32) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.pages == nil {
		return writeError(address, os.ErrClosed)
	}

	w, err := d.word(address)
	if err != nil {
		return writeError(address, err)
	}
	*w = value
	return nil
}

// Close unmaps all pages and closes the device.
func (d *DevMem) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.pages == nil {
		return nil
	}

	var result error
	for _, page := range d.pages {
		if err := unix.Munmap(page); err != nil && result == nil {
			result = err
		}
	}
	d.pages = nil

	if err := d.file.Close(); err != nil && result == nil {
		result = err
	}
	return result
}
