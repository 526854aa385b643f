// Copyright (c) 2024 The serdeslib Authors

// This file implements the RTL930x register backend and the indirect access
// bus shared with the RTL931x. The 12 SerDes are not memory mapped, every
// register exchange is a command written to an IO register pair followed by
// polling a busy bit.
package serdes

import "time"

const (
	sdsIndacsPollMax   = 100
	sdsIndacsPollSleep = 50 * time.Microsecond
)

// Indirect access command word layout:
//
//	bit  0      go/busy
//	bit  1      write (read when clear)
//	bits 6:2    lane
//	bits 12:7   page
//	bits 17:13  register
func sdsIndacsCmd(sid, page, reg uint32, write bool) uint32 {
	cmd := sid<<2 | page<<7 | reg<<13 | 1
	if write {
		cmd |= 2
	}
	return cmd
}

// wait for the busy bit to clear, at most sdsIndacsPollMax attempts
func sdsIndacsPoll(c *Ctrl) error {
	for cnt := 0; cnt < sdsIndacsPollMax; cnt++ {
		if c.base.Read32(0)&1 == 0 {
			return nil
		}
		time.Sleep(sdsIndacsPollSleep)
	}
	return ErrIOTimeout
}

func sdsIndacsRead(c *Ctrl, cmd uint32) (uint32, error) {
	c.base.Write32(0, cmd)
	if err := sdsIndacsPoll(c); err != nil {
		return 0, err
	}
	return c.base.Read32(4) & 0xffff, nil
}

func sdsIndacsWrite(c *Ctrl, cmd, val uint32) error {
	c.base.Write32(4, val)
	c.base.Write32(0, cmd)
	return sdsIndacsPoll(c)
}

func sds930xRead(c *Ctrl, sid, page, reg uint32) (uint32, error) {
	if sid > SDS_930X_MAX_LANE || page > SDS_930X_MAX_PAGE || reg > 31 {
		return 0, ErrArgRange
	}

	return sdsIndacsRead(c, sdsIndacsCmd(sid, page, reg, false))
}

func sds930xMask(c *Ctrl, sid, page, reg, val, mask uint32) error {
	if sid > SDS_930X_MAX_LANE || page > SDS_930X_MAX_PAGE || reg > 31 {
		return ErrArgRange
	}

	// A partial mask needs a read-merge-write round trip. The two bus
	// commands are not atomic against other agents driving the same bus.
	if mask != 0xffff {
		oldval, err := sds930xRead(c, sid, page, reg)
		if err != nil {
			return err
		}
		val |= oldval &^ mask
	}

	return sdsIndacsWrite(c, sdsIndacsCmd(sid, page, reg, true), val)
}

// Mode and submode selector fields live in four switch core registers, 6
// bits apart per lane. Only lanes 2-9 have a submode selector.
func sds930xModeRegs(sid uint32) (modeReg int64, modeSel u32field, subReg int64, subSel u32field, hasSub bool) {
	hasSub = sid >= 2 && sid <= 9
	if sid > 3 {
		subReg = SDS_930X_SUBMODE_CTRL1
		subSel = u32field{offset: int(sid-4) * 5, bitwidth: 5}
	} else {
		subReg = SDS_930X_SUBMODE_CTRL0
		if hasSub {
			subSel = u32field{offset: int(sid-2) * 5, bitwidth: 5}
		}
	}

	switch {
	case sid < 4:
		modeReg = SDS_930X_MODE_SEL_0
		modeSel = u32field{offset: int(sid) * 6, bitwidth: 5}
	case sid < 8:
		modeReg = SDS_930X_MODE_SEL_1
		modeSel = u32field{offset: int(sid-4) * 6, bitwidth: 5}
	case sid < 10:
		modeReg = SDS_930X_MODE_SEL_2
		modeSel = u32field{offset: int(sid-8) * 6, bitwidth: 5}
	default:
		modeReg = SDS_930X_MODE_SEL_3
		modeSel = u32field{offset: int(sid-10) * 6, bitwidth: 5}
	}

	return modeReg, modeSel, subReg, subSel, hasSub
}

func sds930xSetMode(c *Ctrl, sid, combo uint32) error {
	if sid > SDS_930X_MAX_LANE {
		return ErrArgRange
	}

	mode := comboModeField.read(combo)
	submode := comboSubmodeField.read(combo)

	modeReg, modeSel, subReg, subSel, hasSub := sds930xModeRegs(sid)
	if hasSub {
		subSel.iomask(c.sw, subReg, submode)
	}
	modeSel.iomask(c.sw, modeReg, mode)

	return nil
}

func sds930xGetMode(c *Ctrl, sid uint32) (uint32, error) {
	if sid > SDS_930X_MAX_LANE {
		return 0, ErrArgRange
	}

	modeReg, modeSel, subReg, subSel, hasSub := sds930xModeRegs(sid)
	submode := uint32(0)
	if hasSub {
		submode = subSel.ioread(c.sw, subReg)
	}
	mode := modeSel.ioread(c.sw, modeReg)

	return Combomode(mode, submode), nil
}

func sds930xReset(c *Ctrl, sid uint32) error {
	if sid > SDS_930X_MAX_LANE {
		return ErrArgRange
	}

	modeoff := c.conf.modeMap[IF_MODE_NA]
	modecur, err := sds930xGetMode(c, sid)
	if err != nil {
		return err
	}

	// powering the lane off and selecting the old mode again fully
	// reinitializes it, there is no dedicated reset register
	if modecur != modeoff {
		sds930xSetMode(c, sid, modeoff)
		sds930xSetMode(c, sid, modecur)
	}

	return nil
}

var sds930xConf = Conf{
	MaxSds:  SDS_930X_MAX_LANE,
	MaxPage: SDS_930X_MAX_PAGE,
	read:    sds930xRead,
	mask:    sds930xMask,
	reset:   sds930xReset,
	setMode: sds930xSetMode,
	getMode: sds930xGetMode,
	modeMap: modeMapOf(map[IfMode]uint32{
		IF_MODE_NA:        Combomode(31, 0),
		IF_MODE_10GBASER:  Combomode(26, 0),
		IF_MODE_2500BASEX: Combomode(22, 0),
		IF_MODE_1000BASEX: Combomode(4, 0),
		IF_MODE_USXGMII:   Combomode(13, 0), // lanes 2-9 only
		IF_MODE_QUSGMII:   Combomode(13, 2), // lanes 2-9 only
		IF_MODE_QSGMII:    Combomode(6, 0),
	}),
}
