// Copyright (c) 2024 The serdeslib Authors

// This file implements the RTL838x register backend. The family has 6
// SerDes whose 16 bit registers are mapped directly into 32 bit memory
// words starting at 0xbb00e780. The register ranges contain holes, so the
// window offset is a two part closed form of (lane, page, register).
package serdes

import "time"

func sds838xOffset(sid, page, reg uint32) int64 {
	if page == 0 || page == 3 {
		return int64(sid<<9 + page<<7 + reg<<2)
	}
	return int64(0xb80 + sid<<8 + page<<7 + reg<<2)
}

func sds838xRead(c *Ctrl, sid, page, reg uint32) (uint32, error) {
	if sid > SDS_838X_MAX_LANE || page > SDS_838X_MAX_PAGE || reg > 31 {
		return 0, ErrArgRange
	}

	offs := sds838xOffset(sid, page, reg)

	// extra discarded read clears the sticky link status latch
	if page == SDS_PAGE_FIB && reg == 1 {
		c.base.Read32(offs)
	}

	return c.base.Read32(offs), nil
}

func sds838xMask(c *Ctrl, sid, page, reg, val, mask uint32) error {
	if sid > SDS_838X_MAX_LANE || page > SDS_838X_MAX_PAGE || reg > 31 {
		return ErrArgRange
	}

	offs := sds838xOffset(sid, page, reg)

	if page == SDS_PAGE_FIB && reg == 1 {
		c.base.Read32(offs)
	}

	iomask32(c.base, offs, mask, val)

	return nil
}

// digital soft reset of a lane range, shared between the RTL838x and
// RTL839x reset paths
func sds83xxSoftReset(c *Ctrl, sidlo, sidhi uint32, usec int) {
	for sid := sidlo; sid <= sidhi; sid++ {
		c.conf.mask(c, sid, 0x00, 0x03, 0x7146, 0xffff)
	}
	time.Sleep(time.Duration(usec) * time.Microsecond)
	for sid := sidlo; sid <= sidhi; sid++ {
		c.conf.mask(c, sid, 0x00, 0x03, 0x7106, 0xffff)
	}
}

func sds838xReset(c *Ctrl, sid uint32) error {
	if sid > SDS_838X_MAX_LANE {
		return ErrArgRange
	}

	// receiver reset
	sds838xMask(c, sid, 0x01, 0x09, 0x0200, 0x0200)
	sds838xMask(c, sid, 0x01, 0x09, 0x0000, 0x0200)

	// clock unit reset ladder
	sds838xMask(c, sid, 0x01, 0x00, 0x4040, 0xffff)
	sds838xMask(c, sid, 0x01, 0x00, 0x4740, 0xffff)
	sds838xMask(c, sid, 0x01, 0x00, 0x47c0, 0xffff)
	sds838xMask(c, sid, 0x01, 0x00, 0x4000, 0xffff)

	sds83xxSoftReset(c, sid, sid, 1000)

	// serial RX/TX reset
	sds838xMask(c, sid, 0x00, 0x00, 0x0400, 0xffff)
	sds838xMask(c, sid, 0x00, 0x00, 0x0403, 0xffff)

	return nil
}

func sds838xSetMode(c *Ctrl, sid, combo uint32) error {
	if sid > SDS_838X_MAX_LANE {
		return ErrArgRange
	}

	mode := comboModeField.read(combo)
	submode := comboSubmodeField.read(combo)

	// only lanes 4 and 5 have a submode selector
	if sid == 4 || sid == 5 {
		sub := u32field{offset: int(sid-4) * 3, bitwidth: 3}
		sub.iomask(c.sw, SDS_838X_INT_MODE_CTRL, submode)
	}

	sel := u32field{offset: int(25 - sid*5), bitwidth: 5}
	sel.iomask(c.sw, SDS_838X_MODE_SEL, mode)

	return nil
}

func sds838xGetMode(c *Ctrl, sid uint32) (uint32, error) {
	if sid > SDS_838X_MAX_LANE {
		return 0, ErrArgRange
	}

	submode := uint32(0)
	if sid == 4 || sid == 5 {
		sub := u32field{offset: int(sid-4) * 3, bitwidth: 3}
		submode = sub.ioread(c.sw, SDS_838X_INT_MODE_CTRL)
	}

	sel := u32field{offset: int(25 - sid*5), bitwidth: 5}
	mode := sel.ioread(c.sw, SDS_838X_MODE_SEL)

	return Combomode(mode, submode), nil
}

var sds838xConf = Conf{
	MaxSds:  SDS_838X_MAX_LANE,
	MaxPage: SDS_838X_MAX_PAGE,
	read:    sds838xRead,
	mask:    sds838xMask,
	reset:   sds838xReset,
	setMode: sds838xSetMode,
	getMode: sds838xGetMode,
	modeMap: modeMapOf(map[IfMode]uint32{
		IF_MODE_NA:        Combomode(0, 0),
		IF_MODE_1000BASEX: Combomode(4, 1), // lanes 4, 5 only
		IF_MODE_100BASEX:  Combomode(5, 1), // lanes 4, 5 only
		IF_MODE_QSGMII:    Combomode(6, 0),
	}),
}
