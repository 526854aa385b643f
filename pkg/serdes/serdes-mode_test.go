// Copyright (c) 2024 The serdeslib Authors

package serdes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombomode(t *testing.T) {
	code := Combomode(13, 2)
	assert.True(t, ComboModeValid(code))

	mode, submode, ok := SplitCombomode(code)
	assert.True(t, ok)
	assert.Equal(t, uint32(13), mode)
	assert.Equal(t, uint32(2), submode)

	// the off code of the RTL838x/839x is (0, 0) and still tagged
	assert.True(t, ComboModeValid(Combomode(0, 0)))
}

func TestSplitCombomodeUntagged(t *testing.T) {
	// an unset table entry or a raw selector value carries no tag
	for _, code := range []uint32{0, 6, 0x0d02, 0xffff} {
		_, _, ok := SplitCombomode(code)
		assert.False(t, ok, "code 0x%x must not split", code)
		assert.False(t, ComboModeValid(code))
	}
}

func TestHwToIfMode(t *testing.T) {
	assert.Equal(t, IF_MODE_QSGMII, sds838xConf.hwToIfMode(Combomode(6, 0)))
	assert.Equal(t, IF_MODE_1000BASEX, sds838xConf.hwToIfMode(Combomode(4, 1)))
	assert.Equal(t, IF_MODE_NA, sds838xConf.hwToIfMode(Combomode(0, 0)))

	// unknown hardware codes map to off
	assert.Equal(t, IF_MODE_NA, sds838xConf.hwToIfMode(Combomode(17, 3)))
	assert.Equal(t, IF_MODE_NA, sds838xConf.hwToIfMode(0))

	assert.Equal(t, IF_MODE_10GBASER, sds931xConf.hwToIfMode(Combomode(31, 53)))
	assert.Equal(t, IF_MODE_QUSGMII, sds930xConf.hwToIfMode(Combomode(13, 2)))
}

func TestIfModeString(t *testing.T) {
	assert.Equal(t, "off", IF_MODE_NA.String())
	assert.Equal(t, "10gbase-r", IF_MODE_10GBASER.String())
	assert.Equal(t, "qusgmii", IF_MODE_QUSGMII.String())
	assert.Equal(t, "unknown", IF_MODE_MAX.String())
	assert.Equal(t, "unknown", IfMode(-1).String())
}

func TestU32field(t *testing.T) {
	f := u32field{offset: 8, bitwidth: 4}

	assert.Equal(t, uint32(0x0f00), f.mask())
	assert.Equal(t, uint32(0xa), f.read(0x0abc))

	reg := uint32(0xffff)
	f.write(&reg, 0x5)
	assert.Equal(t, uint32(0xf5ff), reg)

	// values wider than the field are truncated
	f.write(&reg, 0x1f)
	assert.Equal(t, uint32(0xffff), reg)

	m := NewMemBuf()
	m.Write32(0x20, 0x0abc)
	assert.Equal(t, uint32(0xa), f.ioread(m, 0x20))

	f.iomask(m, 0x20, 0x3)
	assert.Equal(t, uint32(0x03bc), m.Read32(0x20))
}
