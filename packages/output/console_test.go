package output

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/canterburyairpatrol/smm-asset/packages/asset"
	"github.com/canterburyairpatrol/smm-asset/packages/session"
	"github.com/canterburyairpatrol/smm-asset/packages/stats"
)

func newFormatter(verbose bool) (*ConsoleFormatter, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithVerbose(verbose)), &buf
}

func TestFormatState(t *testing.T) {
	f, buf := newFormatter(false)
	f.FormatState("https://smm.example.com", session.StateAuthenticationFailure)
	assert.Equal(t, "https://smm.example.com authentication failure\n", buf.String())
}

func TestFormatAssets(t *testing.T) {
	f, buf := newFormatter(false)
	f.FormatAssets([]*asset.Asset{{ID: 7, Name: "drone7", Type: "Multirotor"}, {ID: 12, Name: "ground"}})
	assert.Equal(t, "     7 drone7 (Multirotor)\n    12 ground\n", buf.String())

	buf.Reset()
	f.FormatAssets(nil)
	assert.Equal(t, "no assets\n", buf.String())
}

func TestFormatCommand(t *testing.T) {
	f, buf := newFormatter(false)
	a := asset.New(nil, 7, "drone7")
	f.FormatCommand(a, asset.CommandRTL)
	assert.Equal(t, "drone7 return to launch\n", buf.String())
}

func TestFormatSearch(t *testing.T) {
	s := &asset.Search{URL: "/search/12/json/", Distance: 350, Length: 4200, SweepWidth: 100}
	wps := []asset.Waypoint{{Latitude: -43.5, Longitude: 172.6}}

	f, buf := newFormatter(false)
	f.FormatSearch(s, wps)
	assert.Contains(t, buf.String(), "Search /search/12/json/")
	assert.Contains(t, buf.String(), "waypoints:   1")
	assert.NotContains(t, buf.String(), "-43.500000")

	f, buf = newFormatter(true)
	f.FormatSearch(s, wps)
	assert.Contains(t, buf.String(), "-43.500000,172.600000")
}

func TestFormatSummary(t *testing.T) {
	f, buf := newFormatter(false)
	f.FormatSummary(stats.Summary{Total: 10, Errors: 2, Retried: 1, P50: 20 * time.Millisecond})
	assert.Contains(t, buf.String(), "sent:    8, 2 failed")
	assert.Contains(t, buf.String(), "retried: 1")
	assert.Contains(t, buf.String(), "p50=20ms")
}

func TestFormatError(t *testing.T) {
	f, buf := newFormatter(false)
	f.FormatError(errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}
