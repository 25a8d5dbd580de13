package logging_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"cortexdbg/logging"
)

func TestRingTail(t *testing.T) {
	r := logging.NewRing(3)

	r.Log(logging.Allow{}, "dwarf", "one")
	r.Log(logging.Allow{}, "dwarf", "two")
	r.Log(logging.Allow{}, "dwarf", "three")
	r.Log(logging.Allow{}, "dwarf", "four")

	var buf bytes.Buffer
	r.Write(&buf)
	require.Equal(t, "dwarf: two\ndwarf: three\ndwarf: four\n", buf.String())

	buf.Reset()
	r.Tail(&buf, 2)
	require.Equal(t, "dwarf: three\ndwarf: four\n", buf.String())
}

func TestRingClear(t *testing.T) {
	r := logging.NewRing(2)
	r.Log(logging.Allow{}, "unwind", "starting")
	r.Clear()

	var buf bytes.Buffer
	r.Write(&buf)
	require.Equal(t, "", buf.String())
}

type denyPermission struct{}

func (denyPermission) AllowLogging() bool { return false }

func TestRingPermission(t *testing.T) {
	r := logging.NewRing(2)
	r.Log(denyPermission{}, "dwarf", "suppressed")

	var buf bytes.Buffer
	r.Write(&buf)
	require.Equal(t, "", buf.String())
}

func TestNewFansOutToRing(t *testing.T) {
	log, ring := logging.New(10)
	require.NotNil(t, log)

	tagged := logging.Component(log, "unwind")
	tagged.Info("frame resolved", "depth", 3)

	var buf bytes.Buffer
	ring.Tail(&buf, 1)
	require.Contains(t, buf.String(), "unwind:")
	require.Contains(t, buf.String(), "frame resolved")
}
