// Copyright (c) 2024 The serdeslib Authors

package serdes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func new931xCtrl(base, sw MemIO) *Ctrl {
	return &Ctrl{conf: &sds931xConf, base: base, sw: sw}
}

func TestSds931xBackLane(t *testing.T) {
	// even lanes own two background lanes, XGMII2 pages on the second
	assert.Equal(t, uint32(6), sds931xBackLane(4, 0))
	assert.Equal(t, uint32(6), sds931xBackLane(4, 10))
	assert.Equal(t, uint32(6), sds931xBackLane(4, 127))
	assert.Equal(t, uint32(7), sds931xBackLane(4, 130))

	// odd lanes own three, one per 64 page block
	assert.Equal(t, uint32(3), sds931xBackLane(3, 0))
	assert.Equal(t, uint32(4), sds931xBackLane(3, 64))
	assert.Equal(t, uint32(5), sds931xBackLane(3, 128))

	// lane 1 behaves like an even lane
	assert.Equal(t, uint32(1), sds931xBackLane(1, 0))
	assert.Equal(t, uint32(2), sds931xBackLane(1, 128))

	assert.Equal(t, uint32(22), sds931xBackLane(12, 0))
	assert.Equal(t, uint32(25), sds931xBackLane(13, 128))
}

func TestSds931xIndirectAddressing(t *testing.T) {
	bus := newFakeIndacs()
	c := new931xCtrl(bus, NewMemBuf())

	// frontend page 130 of lane 4 is page 2 of background lane 7
	require.NoError(t, sds931xMask(c, 4, 130, 5, 0x4321, 0xffff))

	val, err := sdsIndacsRead(c, sdsIndacsCmd(7, 2, 5, false))
	require.NoError(t, err)
	assert.Equal(t, uint32(0x4321), val)

	val, err = sds931xRead(c, 4, 130, 5)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x4321), val)

	_, err = sds931xRead(c, 14, 0, 0)
	assert.ErrorIs(t, err, ErrArgRange)
	_, err = sds931xRead(c, 0, 192, 0)
	assert.ErrorIs(t, err, ErrArgRange)
}

func TestSds931xMaskMerge(t *testing.T) {
	bus := newFakeIndacs()
	c := new931xCtrl(bus, NewMemBuf())

	require.NoError(t, sds931xMask(c, 2, 31, 9, 0xff00, 0xffff))
	require.NoError(t, sds931xMask(c, 2, 31, 9, 0x0042, 0x00ff))

	val, err := sds931xRead(c, 2, 31, 9)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xff42), val)
}

func TestSds931xModeRoundTrip(t *testing.T) {
	c := new931xCtrl(newFakeIndacs(), NewMemBuf())

	combo := sds931xConf.modeMap[IF_MODE_10GBASER]
	require.NoError(t, sds931xSetMode(c, 2, combo))

	got, err := sds931xGetMode(c, 2)
	require.NoError(t, err)
	assert.Equal(t, combo, got)

	// lanes sharing a selector register do not clobber each other
	other := sds931xConf.modeMap[IF_MODE_QSGMII]
	require.NoError(t, sds931xSetMode(c, 3, other))

	got, err = sds931xGetMode(c, 2)
	require.NoError(t, err)
	assert.Equal(t, combo, got)
	got, err = sds931xGetMode(c, 3)
	require.NoError(t, err)
	assert.Equal(t, other, got)
}

func TestSds931xSetModeForceSetup(t *testing.T) {
	sw := NewMemBuf()
	c := new931xCtrl(newFakeIndacs(), sw)

	require.NoError(t, sds931xSetMode(c, 5, sds931xConf.modeMap[IF_MODE_USXGMII]))

	// the raw selector field carries the force setup bit on top of the mode
	sel := u32field{offset: (5 & 3) << 3, bitwidth: 8}
	raw := sel.ioread(sw, SDS_931X_MODE_CTRL+int64(5&^3))
	assert.Equal(t, uint32(13|SDS_931X_FORCE_SETUP), raw)
}

func TestSds931xReset(t *testing.T) {
	sw := NewMemBuf()
	c := new931xCtrl(newFakeIndacs(), sw)

	combo := sds931xConf.modeMap[IF_MODE_QSGMII]
	require.NoError(t, sds931xSetMode(c, 6, combo))

	pwr := sw.Read32(SDS_931X_PS_OFF_MODE_CTRL)
	require.NoError(t, sds931xReset(c, 6))

	got, err := sds931xGetMode(c, 6)
	require.NoError(t, err)
	assert.Equal(t, combo, got)

	// the power off override is restored afterwards
	assert.Equal(t, pwr, sw.Read32(SDS_931X_PS_OFF_MODE_CTRL))
}
