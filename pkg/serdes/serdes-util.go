// Copyright (c) 2024 The serdeslib Authors

// This file implements the API functions of the serdes library: the
// controller lifecycle and the per lane handle surface.
package serdes

import (
	"fmt"

	"k8s.io/klog/v2"
)

func familyConf(family Family) *Conf {
	switch family {
	case FAMILY_838X:
		return &sds838xConf
	case FAMILY_839X:
		return &sds839xConf
	case FAMILY_930X:
		return &sds930xConf
	case FAMILY_931X:
		return &sds931xConf
	}
	return nil
}

// NewCtrl creates the controller for one switch SoC instance. base is the
// family register window (direct register block or indirect access IO
// registers), sw the switch core window holding the mode selectors. The
// config supplies the managed lane bitmask and the event scripts; a nil or
// partial config is not an error, unmanaged lanes are observed read-only.
//
// Creation powers off all managed lanes, replays the setup event and syncs
// back the live hardware mode of every lane, so lanes configured by the
// bootloader keep reporting their real state.
func NewCtrl(family Family, base, sw MemIO, cfg *Config) (*Ctrl, error) {
	conf := familyConf(family)
	if conf == nil {
		return nil, fmt.Errorf("%w: unknown family %d", ErrArgRange, family)
	}
	if base == nil || sw == nil {
		return nil, fmt.Errorf("missing register window")
	}

	c := &Ctrl{
		conf: conf,
		base: base,
		sw:   sw,
	}

	c.sds = make([]Sds, conf.MaxSds+1)
	c.lanes = make([]*Lane, conf.MaxSds+1)
	for sid := uint32(0); sid <= conf.MaxSds; sid++ {
		c.sds[sid] = Sds{Mode: IF_MODE_NA, Link: -1, MinPort: -1, MaxPort: -1}
		c.lanes[sid] = &Lane{ctrl: c, sid: sid}
	}

	if cfg != nil {
		c.sdsMask = cfg.ManagedLanes
	}
	if c.sdsMask == 0 {
		klog.Warningf("serdes: no managed lanes configured, controller is read-only")
	}

	c.loadEvents(cfg)
	c.setup()

	klog.V(DBG_LVL_BASIC).Infof("serdes: initialized (%d SerDes, %d pages, 32 registers, mask 0x%04x)",
		conf.MaxSds+1, conf.MaxPage+1, c.sdsMask)

	return c, nil
}

// setup forces all managed lanes into power off and replays the setup
// event, then stores the live hardware mode of every lane.
func (c *Ctrl) setup() {
	c.lock.Lock()
	defer c.lock.Unlock()

	for sid := uint32(0); sid <= c.conf.MaxSds; sid++ {
		if c.sdsMask&laneBit(sid) != 0 {
			err := c.conf.setMode(c, sid, c.conf.modeMap[IF_MODE_NA])
			if err == nil {
				err = c.runEvent(sid, EVENT_SETUP)
			}
			if err != nil {
				klog.Errorf("serdes: setup failed for SerDes %d: %v", sid, err)
			}
		}

		// in any case sync back the hardware status
		hw, err := c.conf.getMode(c, sid)
		if err == nil {
			c.sds[sid].Mode = c.conf.hwToIfMode(hw)
		}
	}
}

// Lane returns the handle of one lane.
func (c *Ctrl) Lane(sid uint32) (*Lane, error) {
	if sid > c.conf.MaxSds {
		return nil, ErrArgRange
	}
	return c.lanes[sid], nil
}

// MaxLane returns the highest valid lane index of the family.
func (c *Ctrl) MaxLane() uint32 {
	return c.conf.MaxSds
}

// Bind registers an external consumer of a lane: an optional companion
// lane (-1 for none) for bonded transceiver links and the advisory switch
// port range carried by the lane. The companion relation is recorded on
// both lanes, the port range on the primary only. Returns the primary
// lane handle.
func (c *Ctrl) Bind(sid, link, minPort, maxPort int) (*Lane, error) {
	if sid < 0 || sid > int(c.conf.MaxSds) {
		return nil, ErrArgRange
	}
	if link < -1 || link > int(c.conf.MaxSds) {
		return nil, ErrArgRange
	}
	if minPort < 0 || maxPort < minPort {
		return nil, ErrArgRange
	}

	c.lock.Lock()
	c.sds[sid].Link = link
	if link >= 0 {
		c.sds[link].Link = sid
	}
	c.sds[sid].MinPort = minPort
	c.sds[sid].MaxPort = maxPort
	c.lock.Unlock()

	return c.lanes[sid], nil
}

func (c *Ctrl) setModeInt(sid uint32, phymode IfMode, hwmode uint32) error {
	c.lock.Lock()
	err := c.runEvent(sid, EVENT_PRE_SET_MODE)
	if err == nil {
		err = c.conf.setMode(c, sid, hwmode)
	}
	if err == nil {
		c.sds[sid].Mode = phymode
		err = c.runEvent(sid, EVENT_POST_SET_MODE)
	}
	c.lock.Unlock()

	if err != nil {
		klog.Errorf("serdes: set mode failed for SerDes %d: %v", sid, err)
	}
	return err
}

func (c *Ctrl) resetInt(sid uint32) error {
	c.lock.Lock()
	err := c.runEvent(sid, EVENT_PRE_RESET)
	if err == nil {
		err = c.conf.reset(c, sid)
	}
	if err == nil {
		err = c.runEvent(sid, EVENT_POST_RESET)
	}
	c.lock.Unlock()

	if err != nil {
		klog.Errorf("serdes: reset failed for SerDes %d: %v", sid, err)
	}
	return err
}

// Index returns the lane number.
func (l *Lane) Index() uint32 {
	return l.sid
}

// Managed reports whether this lane is software managed. Operations on
// unmanaged lanes are either no-ops (lifecycle) or rejected (writes).
func (l *Lane) Managed() bool {
	return l.ctrl.sdsMask&laneBit(l.sid) != 0
}

// Mode returns the cached portable mode of the lane.
func (l *Lane) Mode() IfMode {
	c := l.ctrl
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.sds[l.sid].Mode
}

// Companion returns the bonded companion lane index, -1 for none.
func (l *Lane) Companion() int {
	c := l.ctrl
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.sds[l.sid].Link
}

// PortRange returns the advisory switch port range, (-1, -1) if unset.
func (l *Lane) PortRange() (int, int) {
	c := l.ctrl
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.sds[l.sid].MinPort, c.sds[l.sid].MaxPort
}

// Read returns the value of one lane register. Reads are allowed on
// unmanaged lanes but still serialize on the controller lock, because even
// a read can have side effects (link status latch, indirect access bus).
func (l *Lane) Read(page, reg uint32) (uint32, error) {
	c := l.ctrl
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.conf.read(c, l.sid, page, reg)
}

// Mask performs a masked write on one lane register.
func (l *Lane) Mask(page, reg, val, mask uint32) error {
	c := l.ctrl
	if !l.Managed() {
		return ErrPermission
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	return c.conf.mask(c, l.sid, page, reg, val, mask)
}

// Write replaces one lane register completely.
func (l *Lane) Write(page, reg, val uint32) error {
	return l.Mask(page, reg, val, 0xffff)
}

// Init replays the init event. No-op success on unmanaged lanes.
func (l *Lane) Init() error {
	c := l.ctrl
	if !l.Managed() {
		return nil
	}

	c.lock.Lock()
	err := c.runEvent(l.sid, EVENT_INIT)
	c.lock.Unlock()

	if err != nil {
		klog.Errorf("serdes: init failed for SerDes %d: %v", l.sid, err)
	}
	return err
}

// PowerOn replays the power on event. No-op success on unmanaged lanes.
func (l *Lane) PowerOn() error {
	c := l.ctrl
	if !l.Managed() {
		return nil
	}

	c.lock.Lock()
	err := c.runEvent(l.sid, EVENT_POWER_ON)
	c.lock.Unlock()

	if err != nil {
		klog.Errorf("serdes: power on failed for SerDes %d: %v", l.sid, err)
	}
	return err
}

// PowerOff selects the power off mode between the pre and post power off
// events. No-op success on unmanaged lanes.
func (l *Lane) PowerOff() error {
	c := l.ctrl
	if !l.Managed() {
		return nil
	}

	c.lock.Lock()
	err := c.runEvent(l.sid, EVENT_PRE_POWER_OFF)
	if err == nil {
		err = c.conf.setMode(c, l.sid, c.conf.modeMap[IF_MODE_NA])
	}
	if err == nil {
		err = c.runEvent(l.sid, EVENT_POST_POWER_OFF)
	}
	c.lock.Unlock()

	if err != nil {
		klog.Errorf("serdes: power off failed for SerDes %d: %v", l.sid, err)
	}
	return err
}

// Reset runs the family reset between the pre and post reset events.
// No-op success on unmanaged lanes.
func (l *Lane) Reset() error {
	if !l.Managed() {
		return nil
	}
	return l.ctrl.resetInt(l.sid)
}

// SetMode selects a portable interface mode. Only the Ethernet mode class
// is supported. The cached lane mode is updated once the hardware accepted
// the new code, a failed transition keeps the previous cached mode. No-op
// success on unmanaged lanes.
func (l *Lane) SetMode(mode PhyMode, ifmode IfMode) error {
	c := l.ctrl
	if !l.Managed() {
		return nil
	}

	if mode != PHY_MODE_ETHERNET {
		return fmt.Errorf("%w: unsupported mode class %d", ErrArgRange, mode)
	}
	if ifmode < 0 || ifmode >= IF_MODE_MAX {
		return fmt.Errorf("%w: interface mode %d", ErrArgRange, ifmode)
	}

	hwmode := c.conf.modeMap[ifmode]
	if !ComboModeValid(hwmode) {
		return fmt.Errorf("%w: %s", ErrNotRepresentable, ifmode)
	}

	return c.setModeInt(l.sid, ifmode, hwmode)
}
