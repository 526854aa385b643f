// Copyright (c) 2024 The serdeslib Authors

// This file implements the RTL931x register backend. The family exposes 14
// frontend SerDes whose registers are distributed over 32 background
// SerDes behind the same indirect access bus as the RTL930x. Even frontend
// lanes span two background lanes (analog/XGMII1 on the first, XGMII2 on
// the second), odd frontend lanes except lane 1 span three (one per 64
// page block).
package serdes

var sds931xBackMap = [SDS_931X_MAX_LANE + 1]uint32{
	0, 1, 2, 3, 6, 7, 10, 11, 14, 15, 18, 19, 22, 23,
}

// sds931xBackLane maps a frontend (lane, page) pair to the background lane
// that actually owns the register. Pure function, the page within the
// background lane is page & 0x3f.
func sds931xBackLane(sid, page uint32) uint32 {
	back := sds931xBackMap[sid]

	if sid&1 != 0 && sid != 1 {
		back += page >> 6
	} else if page >= 128 {
		back++
	}

	return back
}

func sds931xRead(c *Ctrl, sid, page, reg uint32) (uint32, error) {
	if sid > SDS_931X_MAX_LANE || page > SDS_931X_MAX_PAGE || reg > 31 {
		return 0, ErrArgRange
	}

	back := sds931xBackLane(sid, page)
	return sdsIndacsRead(c, sdsIndacsCmd(back, page&0x3f, reg, false))
}

func sds931xMask(c *Ctrl, sid, page, reg, val, mask uint32) error {
	if sid > SDS_931X_MAX_LANE || page > SDS_931X_MAX_PAGE || reg > 31 {
		return ErrArgRange
	}

	// read-merge-write, same non-atomicity as on the RTL930x
	if mask != 0xffff {
		oldval, err := sds931xRead(c, sid, page, reg)
		if err != nil {
			return err
		}
		val |= oldval &^ mask
	}

	back := sds931xBackLane(sid, page)
	return sdsIndacsWrite(c, sdsIndacsCmd(back, page&0x3f, reg, true), val)
}

func sds931xSetMode(c *Ctrl, sid, combo uint32) error {
	if sid > SDS_931X_MAX_LANE {
		return ErrArgRange
	}

	mode := comboModeField.read(combo)
	submode := comboSubmodeField.read(combo)

	if err := sds931xMask(c, sid, 31, 9, (submode&0x3f)<<6, 0x0fc0); err != nil {
		return err
	}

	sel := u32field{offset: int(sid&3) << 3, bitwidth: 8}
	sel.iomask(c.sw, SDS_931X_MODE_CTRL+int64(sid&^3), mode|SDS_931X_FORCE_SETUP)

	return nil
}

func sds931xGetMode(c *Ctrl, sid uint32) (uint32, error) {
	if sid > SDS_931X_MAX_LANE {
		return 0, ErrArgRange
	}

	val, err := sds931xRead(c, sid, 31, 9)
	if err != nil {
		return 0, err
	}
	submode := (val >> 6) & 0x3f

	sel := u32field{offset: int(sid&3) << 3, bitwidth: 5}
	mode := sel.ioread(c.sw, SDS_931X_MODE_CTRL+int64(sid&^3))

	return Combomode(mode, submode), nil
}

func sds931xReset(c *Ctrl, sid uint32) error {
	if sid > SDS_931X_MAX_LANE {
		return ErrArgRange
	}

	modeoff := c.conf.modeMap[IF_MODE_NA]
	modecur, err := sds931xGetMode(c, sid)
	if err != nil {
		return err
	}

	// mode switch cycle while the lane is held in power off
	if modecur != modeoff {
		pwr := c.sw.Read32(SDS_931X_PS_OFF_MODE_CTRL)
		c.sw.Write32(SDS_931X_PS_OFF_MODE_CTRL, pwr|laneBit(sid))
		sds931xSetMode(c, sid, modeoff)
		sds931xSetMode(c, sid, modecur)
		c.sw.Write32(SDS_931X_PS_OFF_MODE_CTRL, pwr)
	}

	return nil
}

var sds931xConf = Conf{
	MaxSds:  SDS_931X_MAX_LANE,
	MaxPage: SDS_931X_MAX_PAGE,
	read:    sds931xRead,
	mask:    sds931xMask,
	reset:   sds931xReset,
	setMode: sds931xSetMode,
	getMode: sds931xGetMode,
	modeMap: modeMapOf(map[IfMode]uint32{
		IF_MODE_NA:        Combomode(31, 63),
		IF_MODE_10GBASER:  Combomode(31, 53),
		IF_MODE_1000BASEX: Combomode(31, 57), // 1G/10G auto
		IF_MODE_USXGMII:   Combomode(13, 0),
		IF_MODE_XGMII:     Combomode(16, 0),
		IF_MODE_QSGMII:    Combomode(6, 0),
	}),
}
