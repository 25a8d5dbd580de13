package script_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cortexdbg/script"
)

func TestSaveThenLoadRoundTrips(t *testing.T) {
	f := &script.Fixture{
		Name: "smoke",
		Events: []script.Event{
			{Command: "status", Output: "no target attached"},
			{Command: "exit", Output: ""},
		},
	}

	path := filepath.Join(t.TempDir(), "smoke.yaml")
	require.NoError(t, script.Save(path, f))

	loaded, err := script.Load(path)
	require.NoError(t, err)
	require.Equal(t, f.Name, loaded.Name)
	require.Equal(t, f.Events, loaded.Events)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := script.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestScribeRecordsOnlyWhileActive(t *testing.T) {
	s := script.NewScribe("ignored")
	s.Record("status", "no target attached")
	require.Empty(t, s.Close().Events)

	require.NoError(t, s.Open())
	require.True(t, s.IsActive())
	s.Record("status", "no target attached")
	f := s.Close()
	require.False(t, s.IsActive())
	require.Equal(t, []script.Event{{Command: "status", Output: "no target attached"}}, f.Events)
}

func TestOpenTwiceFails(t *testing.T) {
	s := script.NewScribe("dup")
	require.NoError(t, s.Open())
	require.Error(t, s.Open())
}

func TestReplayReportsMismatches(t *testing.T) {
	f := &script.Fixture{
		Name: "mismatch",
		Events: []script.Event{
			{Command: "status", Output: "attached"},
		},
	}

	mismatches, err := script.Replay(f, func(string) (string, bool) {
		return "no target attached", false
	})
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	require.Equal(t, "status", mismatches[0].Command)
}

func TestReplayCleanPasses(t *testing.T) {
	f := &script.Fixture{
		Name: "clean",
		Events: []script.Event{
			{Command: "status", Output: "no target attached"},
		},
	}

	mismatches, err := script.Replay(f, func(string) (string, bool) {
		return "no target attached", false
	})
	require.NoError(t, err)
	require.Empty(t, mismatches)
}

func TestReplayEarlyExitIsAnError(t *testing.T) {
	f := &script.Fixture{
		Name: "early-exit",
		Events: []script.Event{
			{Command: "exit", Output: ""},
			{Command: "status", Output: "no target attached"},
		},
	}

	_, err := script.Replay(f, func(cmd string) (string, bool) {
		if cmd == "exit" {
			return "", true
		}
		return "no target attached", false
	})
	require.Error(t, err)
}
