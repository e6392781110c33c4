package session

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"GoBoardOverlay/internal/geometry"
	"GoBoardOverlay/internal/protocol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
role: VW
room: club-night
label: Alice
host: 2
coordinate_color: white
stone_size: 150
grid:
  - {x: 100, y: 100}
  - {x: 1000, y: 100}
  - {x: 100, y: 1000}
  - {x: 1000, y: 1000}
relay: ws://10.0.0.2:8888/ws
codec: msgpack
mdns: true
`

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, protocol.RoleHost, c.Role)
	assert.Equal(t, "json", c.Codec)
	assert.Equal(t, geometry.DefaultStoneSize, c.StoneSize)
	assert.False(t, c.StoneSizeSet)
	assert.Equal(t, "black", c.CoordinateColor)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	c := Default()
	require.NoError(t, c.LoadFile(path))
	assert.Equal(t, protocol.RoleViewer, c.Role)
	assert.Equal(t, "club-night", c.RoomID)
	assert.Equal(t, "Alice", c.Label)
	assert.Equal(t, "Host 2", c.HostTag)
	assert.Equal(t, "white", c.CoordinateColor)
	assert.Equal(t, geometry.SizePreference{Value: 150, Changed: true}, c.SizePreference())
	assert.Len(t, c.InitialGrid, 4)
	assert.Equal(t, "msgpack", c.Codec)
	assert.True(t, c.MDNS)

	t.Run("missing file", func(t *testing.T) {
		c := Default()
		assert.Error(t, c.LoadFile(filepath.Join(t.TempDir(), "nope.yaml")))
	})

	t.Run("bad role", func(t *testing.T) {
		c := Default()
		assert.True(t, errors.Is(c.applyYAML([]byte("role: admin")), ErrBadRole))
	})
}

func TestApplyLink(t *testing.T) {
	c := Default()
	err := c.ApplyLink("overlay://192.168.1.20:8888/?Network=room1&role=VW&label=Bob&host=3&grid=100,100;1000,100;100,1000;1000,1000&stone=100&CC=red")
	require.NoError(t, err)
	assert.Equal(t, "ws://192.168.1.20:8888/ws", c.RelayURL)
	assert.Equal(t, "room1", c.RoomID)
	assert.Equal(t, protocol.RoleViewer, c.Role)
	assert.Equal(t, "Bob", c.Label)
	assert.Equal(t, "Host 3", c.HostTag)
	assert.Equal(t, []geometry.Point{{X: 100, Y: 100}, {X: 1000, Y: 100}, {X: 100, Y: 1000}, {X: 1000, Y: 1000}}, c.InitialGrid)
	assert.Equal(t, 100, c.StoneSize)
	assert.True(t, c.StoneSizeSet)
	assert.Equal(t, "red", c.CoordinateColor)

	t.Run("errors", func(t *testing.T) {
		c := Default()
		assert.True(t, errors.Is(c.ApplyLink("http://x"), ErrBadLink))
		assert.True(t, errors.Is(c.ApplyLink("overlay://x/?role=boss"), ErrBadRole))
		assert.True(t, errors.Is(c.ApplyLink("overlay://x/?grid=1,2;3,4"), ErrBadGrid))
	})
}

func TestShareLinkRoundTrip(t *testing.T) {
	c := Default()
	c.RoomID = "room 7"
	c.CoordinateColor = "#ffffff"
	c.StoneSize, c.StoneSizeSet = 140, true
	corners := []geometry.Point{{X: 310, Y: 140}, {X: 1620, Y: 180}, {X: 120, Y: 960}, {X: 1800, Y: 1010}}

	link := c.ShareLink("10.0.0.5:8888", protocol.RoleViewer, corners)
	assert.True(t, IsLink(link))

	got := Default()
	require.NoError(t, got.ApplyLink(link))
	assert.Equal(t, protocol.RoleViewer, got.Role)
	assert.Equal(t, "room 7", got.RoomID)
	assert.Equal(t, corners, got.InitialGrid)
	assert.Equal(t, "#ffffff", got.CoordinateColor)
	assert.Equal(t, 140, got.StoneSize)
	assert.Equal(t, "ws://10.0.0.5:8888/ws", got.RelayURL)
}

func TestFlagsPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-config", path, "-label", "Carol", "-codec", "json"}))

	c, err := f.Resolve("overlay://relay.local:9000/?Network=from-link&role=CO")
	require.NoError(t, err)
	assert.Equal(t, "Carol", c.Label, "flag beats file")
	assert.Equal(t, "json", c.Codec, "flag beats file")
	assert.Equal(t, "from-link", c.RoomID, "link beats file")
	assert.Equal(t, protocol.RoleHost, c.Role, "link beats file")
	assert.Equal(t, "ws://relay.local:9000/ws", c.RelayURL)
	assert.Equal(t, "white", c.CoordinateColor, "file beats default")
	assert.NotEmpty(t, c.OwnerID)

	t.Run("bad role flag", func(t *testing.T) {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		f := RegisterFlags(fs)
		require.NoError(t, fs.Parse([]string{"-role", "boss"}))
		_, err := f.Resolve("")
		assert.True(t, errors.Is(err, ErrBadRole))
	})
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Role = protocol.RoleViewer
	c.Label = "two words"
	c.Codec = "xml"
	c.InitialGrid = []geometry.Point{{X: 1, Y: 1}}
	diags := c.Validate()
	assert.Len(t, diags, 5)

	ok := Default()
	ok.RoomID = "r"
	ok.RelayURL = "ws://x/ws"
	assert.Empty(t, ok.Validate())
}
