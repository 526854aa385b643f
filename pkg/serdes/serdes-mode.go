// Copyright (c) 2024 The serdeslib Authors

// This file implements the combined hardware mode code and the mapping
// between hardware codes and the portable interface modes.
package serdes

// IfMode is the portable interface mode of a lane. IF_MODE_NA doubles as
// the "disabled / not applicable" sentinel.
type IfMode int

const (
	IF_MODE_NA IfMode = iota
	IF_MODE_100BASEX
	IF_MODE_1000BASEX
	IF_MODE_2500BASEX
	IF_MODE_10GBASER
	IF_MODE_SGMII
	IF_MODE_QSGMII
	IF_MODE_USXGMII
	IF_MODE_QUSGMII
	IF_MODE_XGMII
	IF_MODE_MAX
)

var ifModeNames = [IF_MODE_MAX]string{
	IF_MODE_NA:        "off",
	IF_MODE_100BASEX:  "100base-x",
	IF_MODE_1000BASEX: "1000base-x",
	IF_MODE_2500BASEX: "2500base-x",
	IF_MODE_10GBASER:  "10gbase-r",
	IF_MODE_SGMII:     "sgmii",
	IF_MODE_QSGMII:    "qsgmii",
	IF_MODE_USXGMII:   "usxgmii",
	IF_MODE_QUSGMII:   "qusgmii",
	IF_MODE_XGMII:     "xgmii",
}

func (m IfMode) String() string {
	if m < 0 || m >= IF_MODE_MAX {
		return "unknown"
	}
	return ifModeNames[m]
}

// PhyMode is the abstract mode class of the generic PHY surface. The lane
// control core only accepts PHY_MODE_ETHERNET.
type PhyMode int

const (
	PHY_MODE_INVALID PhyMode = iota
	PHY_MODE_USB
	PHY_MODE_PCIE
	PHY_MODE_ETHERNET
)

// A hardware mode code combines a (mode, submode) pair into one tagged
// integer:
//
//	bit  16     tag, distinguishes a real code from zero/absent
//	bits 15:8   mode
//	bits 7:0    submode
//
// The tag guarantees that an unset value never aliases a legitimate code.
var (
	comboTagField     = u32field{offset: 16, bitwidth: 1}
	comboModeField    = u32field{offset: 8, bitwidth: 8}
	comboSubmodeField = u32field{offset: 0, bitwidth: 8}
)

// Combomode packs a (mode, submode) pair into a tagged hardware code.
func Combomode(mode, submode uint32) uint32 {
	return comboTagField.mask() | mode<<comboModeField.offset | submode
}

// ComboModeValid reports whether code carries the tag of a packed pair.
func ComboModeValid(code uint32) bool {
	return comboTagField.read(code) != 0
}

// SplitCombomode unpacks a hardware code. ok is false for an unset or
// garbage value that does not carry the tag.
func SplitCombomode(code uint32) (mode, submode uint32, ok bool) {
	if !ComboModeValid(code) {
		return 0, 0, false
	}
	return comboModeField.read(code), comboSubmodeField.read(code), true
}

// hwToIfMode scans the family mode table for the first portable mode whose
// packed code matches exactly. Unknown codes map to IF_MODE_NA.
func (cf *Conf) hwToIfMode(hw uint32) IfMode {
	for m := IfMode(0); m < IF_MODE_MAX; m++ {
		if cf.modeMap[m] == hw {
			return m
		}
	}
	return IF_MODE_NA
}

// u32field addresses a bit field inside a 32 bit register.
type u32field struct {
	offset   int
	bitwidth int
}

func (u *u32field) mask() uint32 {
	return (1<<u.bitwidth - 1) << u.offset
}

func (u *u32field) read(reg uint32) uint32 {
	return (reg >> u.offset) & (1<<u.bitwidth - 1)
}

func (u *u32field) write(reg *uint32, val uint32) {
	*reg = (*reg &^ u.mask()) | ((val << u.offset) & u.mask())
}

// ioread reads the field from a window register.
func (u *u32field) ioread(io MemIO, offs int64) uint32 {
	return u.read(io.Read32(offs))
}

// iomask read-modify-writes the field of a window register.
func (u *u32field) iomask(io MemIO, offs int64, val uint32) {
	iomask32(io, offs, u.mask(), (val<<u.offset)&u.mask())
}
