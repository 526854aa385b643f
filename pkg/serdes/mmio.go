// Copyright (c) 2024 The serdeslib Authors

// This file implements the 32 bit register window access used by all SerDes
// register backends. Real hardware is reached through a /dev/mem mapping,
// tests and simulations use a sparse memory buffer.
package serdes

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"k8s.io/klog/v2"
)

// MemIO is a 32 bit wide register window. Offsets are relative to the
// physical base the window was created for. Accesses do not fail, mapping
// problems surface when the window is created.
type MemIO interface {
	Read32(offs int64) uint32
	Write32(offs int64, val uint32)
}

// read-modify-write of a register, only bits in mask are replaced
func iomask32(io MemIO, offs int64, mask, val uint32) {
	io.Write32(offs, (io.Read32(offs)&^mask)|val)
}

// DevMem maps a physical register window through /dev/mem.
type DevMem struct {
	mmap         []byte
	dev_mem_file *os.File
}

func NewDevMem(phys int64, size int) (*DevMem, error) {
	if phys&0xFFF != 0 {
		return nil, fmt.Errorf("window base 0x%X is not 4k aligned", phys)
	}
	f, err := os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	klog.V(DBG_LVL_INFO).Infof("mmio.NewDevMem: phyaddr 0x%X size 0x%X", phys, size)
	mmap, err := syscall.Mmap(int(f.Fd()), phys, size, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to map window 0x%X: %v", phys, err)
	}
	return &DevMem{mmap: mmap, dev_mem_file: f}, nil
}

func (d *DevMem) Read32(offs int64) uint32 {
	return *(*uint32)(unsafe.Pointer(&d.mmap[offs]))
}

func (d *DevMem) Write32(offs int64, val uint32) {
	*(*uint32)(unsafe.Pointer(&d.mmap[offs])) = val
}

func (d *DevMem) Close() error {
	err := syscall.Munmap(d.mmap)
	if cerr := d.dev_mem_file.Close(); err == nil {
		err = cerr
	}
	return err
}

// MemBuf is a sparse RAM backed register window.
type MemBuf struct {
	regs map[int64]uint32
}

func NewMemBuf() *MemBuf {
	return &MemBuf{regs: make(map[int64]uint32)}
}

func (m *MemBuf) Read32(offs int64) uint32 {
	return m.regs[offs]
}

func (m *MemBuf) Write32(offs int64, val uint32) {
	m.regs[offs] = val
}
