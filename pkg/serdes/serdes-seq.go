// Copyright (c) 2024 The serdeslib Authors

// This file implements the register sequence engine. Many SerDes settings
// of the Otto platform are undocumented magic, so instead of hardcoding
// them the controller replays configured register modification sequences
// around lifecycle transitions.
package serdes

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"k8s.io/klog/v2"
)

// Config is the external controller configuration. Event scripts are flat
// uint16 arrays, six values per step (action, lanes, page, register, value,
// mask), matching the step record layout.
type Config struct {
	ManagedLanes uint32              `yaml:"managed-lanes"`
	Events       map[string][]uint16 `yaml:"events"`
}

// LoadConfig reads a controller configuration from a yaml file.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %v", path, err)
	}

	return cfg, nil
}

func knownEvent(name string) bool {
	for _, n := range eventNames {
		if n == name {
			return true
		}
	}
	return false
}

// loadEvents converts the configured scripts into step lists. Malformed
// scripts are dropped with a warning, the controller stays usable.
func (c *Ctrl) loadEvents(cfg *Config) {
	if cfg == nil {
		return
	}

	for name := range cfg.Events {
		if !knownEvent(name) {
			klog.Warningf("serdes: ignore unknown sequence %q", name)
		}
	}

	for evt := 0; evt <= EVENT_MAX; evt++ {
		flat := cfg.Events[eventNames[evt]]
		if len(flat) == 0 {
			continue
		}

		if len(flat)%seqStepWords != 0 {
			klog.Warningf("serdes: ignore sequence %s (incomplete data)", eventNames[evt])
			continue
		}

		steps := make([]SeqStep, 0, len(flat)/seqStepWords+1)
		for i := 0; i < len(flat); i += seqStepWords {
			steps = append(steps, SeqStep{
				Action: flat[i],
				Ports:  flat[i+1],
				Page:   flat[i+2],
				Reg:    flat[i+3],
				Val:    flat[i+4],
				Mask:   flat[i+5],
			})
		}

		// stop marker in case it is missing in the config
		steps = append(steps, SeqStep{Action: SEQ_STOP})

		c.sequence[evt] = steps
	}
}

// runEvent replays the script of one event against one lane. A WAIT step
// whose lane mask matches arms a pending delay that is slept before every
// following step. A failing MASK step aborts the whole sequence, changes
// already applied stay in place. Must be called with the controller lock
// held.
func (c *Ctrl) runEvent(sid uint32, evt int) error {
	if evt < 0 || evt > EVENT_MAX || sid > c.conf.MaxSds {
		return ErrArgRange
	}

	seq := c.sequence[evt]
	if seq == nil {
		return nil
	}

	delay := uint32(0)
	for step := 0; seq[step].Action != SEQ_STOP; step++ {
		s := &seq[step]

		if s.Action == SEQ_WAIT && uint32(s.Ports)&laneBit(sid) != 0 {
			delay = uint32(s.Val)
		}

		if delay != 0 {
			time.Sleep(time.Duration(delay<<10) * time.Microsecond)
		}

		if s.Action == SEQ_MASK && uint32(s.Ports)&laneBit(sid) != 0 {
			err := c.conf.mask(c, sid, uint32(s.Page), uint32(s.Reg), uint32(s.Val), uint32(s.Mask))
			if err != nil {
				klog.Errorf("serdes: sequence %s failed at step %d: %v", eventNames[evt], step+1, err)
				return fmt.Errorf("%w: %s step %d: %v", ErrSeqStep, eventNames[evt], step+1, err)
			}
		}
	}

	return nil
}
