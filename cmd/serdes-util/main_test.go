// Copyright (c) 2024 The serdeslib Authors

package main

import (
	"context"
	"strconv"
	"testing"

	"serdeslib/pkg/serdes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsDefaults(t *testing.T) {
	s := Settings{}
	err, _ := s.InitContext([]string{"serdes-util"}, context.Background())
	require.NoError(t, err)

	assert.True(t, s.Help, "no arguments defaults to the help text")
	assert.Equal(t, DefaultVerbosity, s.Verbosity)
	assert.Equal(t, -1, s.dump)
	assert.Equal(t, -1, s.mode)
	assert.Equal(t, -1, s.polarity)

	// the swcore default is the shared physical window base
	swPhys, perr := strconv.ParseInt(s.Swcore, 16, 64)
	require.NoError(t, perr)
	assert.Equal(t, int64(serdes.SWITCH_ADDR_BASE), swPhys)
}

func TestSettingsParse(t *testing.T) {
	s := Settings{}
	err, _ := s.InitContext([]string{"serdes-util",
		"--family=rtl9300-serdes", "--base=1b00e780", "--dump=3"},
		context.Background())
	require.NoError(t, err)

	assert.False(t, s.Help)
	assert.Equal(t, "rtl9300-serdes", s.Family)
	assert.Equal(t, "1b00e780", s.Base)
	assert.Equal(t, 3, s.dump)
	assert.NotEqual(t, serdes.FAMILY_UNKNOWN, serdes.FamilyByName(s.Family))
}
