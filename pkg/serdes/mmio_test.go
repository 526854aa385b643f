// Copyright (c) 2024 The serdeslib Authors

package serdes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// countingIO wraps a register window and counts the accesses going through.
type countingIO struct {
	MemIO
	reads  int
	writes int
}

func (c *countingIO) Read32(offs int64) uint32 {
	c.reads++
	return c.MemIO.Read32(offs)
}

func (c *countingIO) Write32(offs int64, val uint32) {
	c.writes++
	c.MemIO.Write32(offs, val)
}

func TestMemBuf(t *testing.T) {
	m := NewMemBuf()

	assert.Equal(t, uint32(0), m.Read32(0x1000), "unwritten registers read as zero")

	m.Write32(0x1000, 0xdeadbeef)
	m.Write32(0x1004, 0x1234)
	assert.Equal(t, uint32(0xdeadbeef), m.Read32(0x1000))
	assert.Equal(t, uint32(0x1234), m.Read32(0x1004))

	m.Write32(0x1000, 0)
	assert.Equal(t, uint32(0), m.Read32(0x1000))
}

func TestIomask32(t *testing.T) {
	m := NewMemBuf()
	m.Write32(0x10, 0xaaaa5555)

	iomask32(m, 0x10, 0x0000ffff, 0x00001234)
	assert.Equal(t, uint32(0xaaaa1234), m.Read32(0x10), "only masked bits change")

	iomask32(m, 0x10, 0xffffffff, 0x1)
	assert.Equal(t, uint32(0x1), m.Read32(0x10), "full mask replaces the register")
}
