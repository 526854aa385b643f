// Copyright (c) 2024 The serdeslib Authors

// This file implements the diagnostic surface. The SerDes still hide a lot
// of magic, so next to the plain mode and polarity views there is an
// override that pushes an arbitrary hardware mode code through the normal
// transition, events included.
package serdes

import (
	"fmt"
	"strings"
)

var sdsPageNames = map[uint32]string{
	0: "SDS", 1: "SDS_EXT",
	2: "FIB", 3: "FIB_EXT",
	4: "DTE", 5: "DTE_EXT",
	6: "TGX", 7: "TGX_EXT",
	8: "ANA_RG", 9: "ANA_RG_EXT",
	10: "ANA_TG", 11: "ANA_TG_EXT",
	31: "ANA_WDIG",
	32: "ANA_MISC", 33: "ANA_COM",
	34: "ANA_SP", 35: "ANA_SP_EXT",
	36: "ANA_1G", 37: "ANA_1G_EXT",
	38: "ANA_2G", 39: "ANA_2G_EXT",
	40: "ANA_3G", 41: "ANA_3G_EXT",
	42: "ANA_5G", 43: "ANA_5G_EXT",
	44: "ANA_6G", 45: "ANA_6G_EXT",
	46: "ANA_10G", 47: "ANA_10G_EXT",
}

func sdsPageName(page uint32) string {
	if name, ok := sdsPageNames[page]; ok {
		return name
	}
	if page == 64 || page == 128 {
		return fmt.Sprintf("XGMII_%d", page>>6)
	}
	return fmt.Sprintf("PAGE_%03d", page)
}

// DumpRegisters renders all pages and registers of one lane.
func (c *Ctrl) DumpRegisters(sid uint32) (string, error) {
	if sid > c.conf.MaxSds {
		return "", ErrArgRange
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "%13s", "")
	for reg := 0; reg < 32; reg++ {
		fmt.Fprintf(&b, "%5d", reg)
	}

	for page := uint32(0); page <= c.conf.MaxPage; page++ {
		fmt.Fprintf(&b, "\n%-11s: ", sdsPageName(page))
		for reg := uint32(0); reg < 32; reg++ {
			val, _ := c.conf.read(c, sid, page, reg)
			fmt.Fprintf(&b, "%04X ", val&0xffff)
		}
	}
	b.WriteString("\n")

	return b.String(), nil
}

// ModeInfo returns the live hardware mode code and the cached portable
// mode of one lane.
func (c *Ctrl) ModeInfo(sid uint32) (hw uint32, mode IfMode, err error) {
	if sid > c.conf.MaxSds {
		return 0, IF_MODE_NA, ErrArgRange
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	hw, err = c.conf.getMode(c, sid)
	return hw, c.sds[sid].Mode, err
}

// SetHwMode pushes an arbitrary hardware mode code into a lane through the
// full set mode transition. The portable mode is resolved by reverse
// lookup. This bypasses the managed lane mask and the mode table checks
// and exists for hardware exploration only.
func (c *Ctrl) SetHwMode(sid, hwmode uint32) error {
	if sid > c.conf.MaxSds {
		return ErrArgRange
	}

	return c.setModeInt(sid, c.conf.hwToIfMode(hwmode), hwmode)
}

// Polarity reports whether the high speed output/input signals of a lane
// are inverted.
func (c *Ctrl) Polarity(sid uint32) (txInv, rxInv bool, err error) {
	if sid > c.conf.MaxSds {
		return false, false, ErrArgRange
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	val, err := c.conf.read(c, sid, SDS_PAGE_SDS, 0)
	if err != nil {
		return false, false, err
	}

	return val&SDS_INV_HSO != 0, val&SDS_INV_HSI != 0, nil
}
