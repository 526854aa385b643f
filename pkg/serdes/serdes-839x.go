// Copyright (c) 2024 The serdeslib Authors

// This file implements the RTL839x register backend. The family has 14
// SerDes starting at 0xbb00a000. Two adjacent lanes are tightly coupled
// and share a 1024 byte register area. Each 32 bit word stores two 16 bit
// registers: even registers in the lower half, odd registers in the upper
// half (big endian layout). Several page ranges only exist for certain
// lanes, the remaining combinations are unbacked holes.
package serdes

import "time"

// Window offset for (lane, page, register), -1 for an unbacked hole.
func sds839xOffset(sid, page, reg uint32) int64 {
	offs := int64((sid&0xfe)<<9 + (reg&0xfe)<<1)

	switch {
	case page < 4:
		offs += int64((sid&1)<<8 + page<<6)
	case page < 8:
		if sid != 8 && sid != 12 {
			return -1
		}
		offs += int64(0x100 + page<<6)
	case page < 10:
		if sid == 8 || sid == 9 || sid == 12 || sid == 13 {
			return -1
		}
		offs += int64(0x100 + (sid&1)<<7 + page<<6)
	default:
		if sid != 8 && sid != 9 && sid != 12 && sid != 13 {
			return -1
		}
		offs += int64(0x100 + (sid&1)<<7 + (page-2)<<6)
	}

	return offs
}

func sds839xRead(c *Ctrl, sid, page, reg uint32) (uint32, error) {
	if sid > SDS_839X_MAX_LANE || page > SDS_839X_MAX_PAGE || reg > 31 {
		return 0, ErrArgRange
	}

	offs := sds839xOffset(sid, page, reg)
	if offs < 0 {
		return 0, nil
	}

	// extra discarded read clears the sticky link status latch
	if page == SDS_PAGE_FIB && reg == 1 {
		c.base.Read32(offs)
	}

	shift := (reg << 4) & 0x10
	return (c.base.Read32(offs) >> shift) & 0xffff, nil
}

func sds839xMask(c *Ctrl, sid, page, reg, val, mask uint32) error {
	if sid > SDS_839X_MAX_LANE || page > SDS_839X_MAX_PAGE || reg > 31 {
		return ErrArgRange
	}

	offs := sds839xOffset(sid, page, reg)
	if offs < 0 {
		return nil
	}

	if page == SDS_PAGE_FIB && reg == 1 {
		c.base.Read32(offs)
	}

	// merge only the half word this register owns, the paired register
	// in the other half must stay untouched
	oldval := c.base.Read32(offs)
	if reg&1 != 0 {
		val = (oldval &^ (mask << 16)) | (val << 16)
	} else {
		val = (oldval &^ mask) | val
	}
	c.base.Write32(offs, val)

	return nil
}

func sds839xSetMode(c *Ctrl, sid, combo uint32) error {
	if sid > SDS_839X_MAX_LANE {
		return ErrArgRange
	}

	mode := comboModeField.read(combo)
	submode := comboSubmodeField.read(combo)

	sds839xMask(c, sid, 0, 4, (submode<<12)&0xf000, 0xf000)

	sel := u32field{offset: int(sid&7) << 2, bitwidth: 4}
	sel.iomask(c.sw, SDS_839X_MAC_IF_CTRL+int64((sid>>1)&^3), mode)

	return nil
}

func sds839xGetMode(c *Ctrl, sid uint32) (uint32, error) {
	if sid > SDS_839X_MAX_LANE {
		return 0, ErrArgRange
	}

	val, _ := sds839xRead(c, sid, 0, 4)
	submode := (val >> 12) & 0xf

	sel := u32field{offset: int(sid&7) << 2, bitwidth: 4}
	mode := sel.ioread(c.sw, SDS_839X_MAC_IF_CTRL+int64((sid>>1)&^3))

	return Combomode(mode, submode), nil
}

func sds839xReset(c *Ctrl, sid uint32) error {
	if sid > SDS_839X_MAX_LANE {
		return ErrArgRange
	}

	lo, hi := sid&^1, sid|1

	// A reset is a clock (CMU) reset followed by a digital soft reset.
	// Some CMU registers are shared between adjacent lanes, so the reset
	// always works on the pair.

	if lo < 8 || lo == 10 {
		sds839xMask(c, hi, 0x09, 0x01, 0x0050, 0xffff)
		sds839xMask(c, hi, 0x09, 0x01, 0x00f0, 0xffff)
		sds839xMask(c, hi, 0x09, 0x01, 0x0000, 0xffff)
		sds839xMask(c, lo, 0x08, 0x14, 0x0000, 0x0001)
		sds839xMask(c, lo, 0x08, 0x14, 0x0200, 0x0200)
		time.Sleep(100 * time.Millisecond)
		sds839xMask(c, lo, 0x08, 0x14, 0x0000, 0x0200)
	} else {
		sds839xMask(c, lo, 0x0a, 0x10, 0x0000, 0x0008)
		sds839xMask(c, lo, 0x0b, 0x00, 0x8000, 0x8000)
		time.Sleep(100 * time.Millisecond)
		sds839xMask(c, lo, 0x0b, 0x00, 0x0000, 0x8000)
	}

	sds83xxSoftReset(c, lo, hi, 100000)

	return nil
}

var sds839xConf = Conf{
	MaxSds:  SDS_839X_MAX_LANE,
	MaxPage: SDS_839X_MAX_PAGE,
	read:    sds839xRead,
	mask:    sds839xMask,
	reset:   sds839xReset,
	setMode: sds839xSetMode,
	getMode: sds839xGetMode,
	modeMap: modeMapOf(map[IfMode]uint32{
		IF_MODE_NA:        Combomode(0, 0),
		IF_MODE_10GBASER:  Combomode(1, 0), // lanes 8, 12 only
		IF_MODE_1000BASEX: Combomode(7, 0), // lanes 12, 13 only
		IF_MODE_100BASEX:  Combomode(8, 0),
		IF_MODE_QSGMII:    Combomode(6, 0),
		IF_MODE_SGMII:     Combomode(7, 5), // lanes 8, 12, 13 only
	}),
}
