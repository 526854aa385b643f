// Copyright (c) 2024 The serdeslib Authors

// This file defines the SerDes controller structures and constants for the
// RTL838x, RTL839x, RTL930x and RTL931x switch SoC families.
package serdes

import (
	"errors"
	"sync"
)

const (
	DBG_LVL_DEFAULT     = iota //0
	DBG_LVL_BASIC              //1
	DBG_LVL_INFO               //2
	DBG_LVL_DETAIL             //3
	DBG_LVL_DEEP_DETAIL        //4
)

// Error taxonomy of the lane control core.
var (
	ErrArgRange         = errors.New("serdes: argument out of range")
	ErrPermission       = errors.New("serdes: lane is not software managed")
	ErrIOTimeout        = errors.New("serdes: access bus busy timeout")
	ErrNotRepresentable = errors.New("serdes: mode has no hardware code on this family")
	ErrSeqStep          = errors.New("serdes: sequence step failed")
)

// Family selects one of the supported switch SoC register topologies.
type Family int

const (
	FAMILY_UNKNOWN Family = iota
	FAMILY_838X
	FAMILY_839X
	FAMILY_930X
	FAMILY_931X
)

var familyNames = map[string]Family{
	"rtl8380-serdes": FAMILY_838X,
	"rtl8390-serdes": FAMILY_839X,
	"rtl9300-serdes": FAMILY_930X,
	"rtl9310-serdes": FAMILY_931X,
}

// FamilyByName resolves a compatible style name, e.g. "rtl9300-serdes".
func FamilyByName(name string) Family {
	return familyNames[name]
}

// FamilyNames returns all supported compatible style names.
func FamilyNames() []string {
	names := make([]string, 0, len(familyNames))
	for n := range familyNames {
		names = append(names, n)
	}
	return names
}

// Common page numbers and bits of the serial page register set.
const (
	SDS_PAGE_SDS     = 0
	SDS_PAGE_SDS_EXT = 1
	SDS_PAGE_FIB     = 2
	SDS_PAGE_FIB_EXT = 3

	SDS_INV_HSO = 0x100
	SDS_INV_HSI = 0x200
)

// Family bounds and switch core register offsets. The offsets address the
// switch register window that starts at SWITCH_ADDR_BASE.
const SWITCH_ADDR_BASE = 0xbb000000

const (
	SDS_838X_MAX_LANE      = 5
	SDS_838X_MAX_PAGE      = 3
	SDS_838X_MODE_SEL      = 0x0028
	SDS_838X_INT_MODE_CTRL = 0x005c

	SDS_839X_MAX_LANE    = 13
	SDS_839X_MAX_PAGE    = 11
	SDS_839X_MAC_IF_CTRL = 0x0008

	SDS_930X_MAX_LANE      = 11
	SDS_930X_MAX_PAGE      = 63
	SDS_930X_MODE_SEL_0    = 0x0194
	SDS_930X_MODE_SEL_1    = 0x02a0
	SDS_930X_MODE_SEL_2    = 0x02a4
	SDS_930X_MODE_SEL_3    = 0x0198
	SDS_930X_SUBMODE_CTRL0 = 0x01cc
	SDS_930X_SUBMODE_CTRL1 = 0x02d8

	SDS_931X_MAX_LANE         = 13
	SDS_931X_MAX_PAGE         = 191
	SDS_931X_MODE_CTRL        = 0x13cc
	SDS_931X_PS_OFF_MODE_CTRL = 0x13f4
	SDS_931X_FORCE_SETUP      = 0x80
)

// Lifecycle events a register sequence can be attached to.
const (
	EVENT_SETUP = iota
	EVENT_INIT
	EVENT_POWER_ON
	EVENT_PRE_SET_MODE
	EVENT_POST_SET_MODE
	EVENT_PRE_RESET
	EVENT_POST_RESET
	EVENT_PRE_POWER_OFF
	EVENT_POST_POWER_OFF
	EVENT_MAX = EVENT_POST_POWER_OFF
)

var eventNames = [EVENT_MAX + 1]string{
	EVENT_SETUP:          "cmd-setup",
	EVENT_INIT:           "cmd-init",
	EVENT_POWER_ON:       "cmd-power-on",
	EVENT_PRE_SET_MODE:   "cmd-pre-set-mode",
	EVENT_POST_SET_MODE:  "cmd-post-set-mode",
	EVENT_PRE_RESET:      "cmd-pre-reset",
	EVENT_POST_RESET:     "cmd-post-reset",
	EVENT_PRE_POWER_OFF:  "cmd-pre-power-off",
	EVENT_POST_POWER_OFF: "cmd-post-power-off",
}

// Sequence step actions.
const (
	SEQ_STOP = 0
	SEQ_MASK = 1
	SEQ_WAIT = 2
)

// SeqStep is one fixed size sequence record. Scripts are configured as flat
// uint16 arrays with seqStepWords values per step.
type SeqStep struct {
	Action uint16
	Ports  uint16
	Page   uint16
	Reg    uint16
	Val    uint16
	Mask   uint16
}

const seqStepWords = 6

// Sds is the per lane state record of a controller.
type Sds struct {
	Mode    IfMode
	Link    int
	MinPort int
	MaxPort int
}

// Conf is the immutable per family descriptor. The backend functions perform
// the actual register work against the controller windows.
type Conf struct {
	MaxSds  uint32
	MaxPage uint32
	read    func(c *Ctrl, sid, page, reg uint32) (uint32, error)
	mask    func(c *Ctrl, sid, page, reg, val, mask uint32) error
	reset   func(c *Ctrl, sid uint32) error
	setMode func(c *Ctrl, sid, combo uint32) error
	getMode func(c *Ctrl, sid uint32) (uint32, error)
	modeMap [IF_MODE_MAX]uint32
}

// Ctrl drives all SerDes lanes of one switch SoC instance. The lock
// serializes every operation across all lanes because register addressing
// and the indirect access bus are shared between lanes.
type Ctrl struct {
	conf     *Conf
	base     MemIO
	sw       MemIO
	lock     sync.Mutex
	sdsMask  uint32
	sds      []Sds
	lanes    []*Lane
	sequence [EVENT_MAX + 1][]SeqStep
}

// Lane is the per lane handle handed to external callers.
type Lane struct {
	ctrl *Ctrl
	sid  uint32
}

func laneBit(sid uint32) uint32 {
	return 1 << sid
}

func modeMapOf(m map[IfMode]uint32) [IF_MODE_MAX]uint32 {
	var t [IF_MODE_MAX]uint32
	for k, v := range m {
		t[k] = v
	}
	return t
}
