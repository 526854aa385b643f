// Copyright (c) 2024 The serdeslib Authors

package serdes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func new839xCtrl(base, sw MemIO) *Ctrl {
	return &Ctrl{conf: &sds839xConf, base: base, sw: sw}
}

func TestSds839xOffset(t *testing.T) {
	assert.Equal(t, int64(0), sds839xOffset(0, 0, 0))
	assert.Equal(t, int64(0x100), sds839xOffset(1, 0, 0))
	assert.Equal(t, int64(0x444), sds839xOffset(2, 1, 3))
	assert.Equal(t, int64(0x1240), sds839xOffset(8, 5, 0))
	assert.Equal(t, int64(0x1300), sds839xOffset(8, 10, 0))

	// unbacked page ranges
	assert.Equal(t, int64(-1), sds839xOffset(0, 4, 0), "XSG pages only on lanes 8/12")
	assert.Equal(t, int64(-1), sds839xOffset(8, 8, 0), "TGR pages not on 10G lanes")
	assert.Equal(t, int64(-1), sds839xOffset(0, 10, 0), "ANA_TG pages only on 10G lanes")
}

func TestSds839xHoleAccess(t *testing.T) {
	base := &countingIO{MemIO: NewMemBuf()}
	c := new839xCtrl(base, NewMemBuf())

	// holes read as zero and swallow writes without touching the window
	val, err := sds839xRead(c, 0, 4, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), val)
	assert.Equal(t, 0, base.reads)

	require.NoError(t, sds839xMask(c, 0, 4, 0, 0xffff, 0xffff))
	assert.Equal(t, 0, base.writes)
}

func TestSds839xHalfWordPacking(t *testing.T) {
	base := NewMemBuf()
	c := new839xCtrl(base, NewMemBuf())

	// register pair 6/7 of one lane shares a 32 bit word
	require.NoError(t, sds839xMask(c, 0, 0, 6, 0x1111, 0xffff))
	require.NoError(t, sds839xMask(c, 0, 0, 7, 0x2222, 0xffff))

	assert.Equal(t, uint32(0x22221111), base.Read32(0xc))

	val, _ := sds839xRead(c, 0, 0, 6)
	assert.Equal(t, uint32(0x1111), val)
	val, _ = sds839xRead(c, 0, 0, 7)
	assert.Equal(t, uint32(0x2222), val)

	// a partial write of the odd register leaves the even one alone
	require.NoError(t, sds839xMask(c, 0, 0, 7, 0x0033, 0x00ff))
	assert.Equal(t, uint32(0x22331111), base.Read32(0xc))
}

func TestSds839xLinkStatusLatch(t *testing.T) {
	base := &countingIO{MemIO: NewMemBuf()}
	c := new839xCtrl(base, NewMemBuf())

	base.reads = 0
	_, err := sds839xRead(c, 1, SDS_PAGE_FIB, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, base.reads)
}

func TestSds839xModeRoundTrip(t *testing.T) {
	c := new839xCtrl(NewMemBuf(), NewMemBuf())

	combo := sds839xConf.modeMap[IF_MODE_SGMII]
	require.NoError(t, sds839xSetMode(c, 12, combo))

	got, err := sds839xGetMode(c, 12)
	require.NoError(t, err)
	assert.Equal(t, combo, got)

	// lanes 0-7 and 8-13 use different selector registers
	require.NoError(t, sds839xSetMode(c, 3, sds839xConf.modeMap[IF_MODE_QSGMII]))
	got, err = sds839xGetMode(c, 3)
	require.NoError(t, err)
	assert.Equal(t, Combomode(6, 0), got)

	got, err = sds839xGetMode(c, 12)
	require.NoError(t, err)
	assert.Equal(t, combo, got)
}

func TestSds839xReset(t *testing.T) {
	base := NewMemBuf()
	c := new839xCtrl(base, NewMemBuf())

	require.NoError(t, sds839xReset(c, 2))

	// the reset always covers the bonded pair
	val, _ := sds839xRead(c, 2, 0x00, 0x03)
	assert.Equal(t, uint32(0x7106), val)
	val, _ = sds839xRead(c, 3, 0x00, 0x03)
	assert.Equal(t, uint32(0x7106), val)
	val, _ = sds839xRead(c, 3, 0x09, 0x01)
	assert.Equal(t, uint32(0), val)

	assert.ErrorIs(t, sds839xReset(c, 14), ErrArgRange)
}
