package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cortexdbg/config"
	"cortexdbg/cortexerr"
)

func TestLoadMissingBinary(t *testing.T) {
	v := config.New("")
	v.Set("chip", "STM32F405RG")

	_, err := config.Load(v)
	require.Error(t, err)
	code, ok := cortexerr.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, cortexerr.ConfigurationMissing, code)
}

func TestLoadMissingChip(t *testing.T) {
	v := config.New("")
	v.Set("binary", "/tmp/firmware.elf")

	_, err := config.Load(v)
	require.Error(t, err)
	code, ok := cortexerr.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, cortexerr.ConfigurationMissing, code)
}

func TestLoadDefaults(t *testing.T) {
	v := config.New("")
	v.Set("binary", "/tmp/firmware.elf")
	v.Set("chip", "STM32F405RG")

	s, err := config.Load(v)
	require.NoError(t, err)
	require.Equal(t, "/tmp/firmware.elf", s.Binary)
	require.Equal(t, "STM32F405RG", s.Chip)
	require.Equal(t, 0, s.ProbeNumber)
	require.Equal(t, config.DefaultDAPPort, s.DAPPort)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CORTEXDBG_BINARY", "/env/firmware.elf")
	t.Setenv("CORTEXDBG_CHIP", "STM32F767ZI")

	v := config.New("")
	s, err := config.Load(v)
	require.NoError(t, err)
	require.Equal(t, "/env/firmware.elf", s.Binary)
	require.Equal(t, "STM32F767ZI", s.Chip)
}
