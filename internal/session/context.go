// Package session resolves the startup configuration of one participant from
// defaults, a YAML file, an overlay:// share link and command-line flags.
package session

import (
	"fmt"
	"os"
	"strings"

	"GoBoardOverlay/internal/geometry"
	"GoBoardOverlay/internal/protocol"
	"GoBoardOverlay/internal/state"

	"gopkg.in/yaml.v3"
)

// Context is everything the core needs to know about this participant.
type Context struct {
	Role            protocol.Role
	RoomID          string
	OwnerID         string
	Label           string
	HostTag         string
	UserColor       string
	CoordinateColor string
	StoneSize       int
	StoneSizeSet    bool
	InitialGrid     []geometry.Point
	RelayURL        string
	Codec           string
	Listen          string
	MDNS            bool
}

// Default returns a commentator context with no room and no relay.
func Default() Context {
	return Context{
		Role:            protocol.RoleHost,
		CoordinateColor: "black",
		StoneSize:       geometry.DefaultStoneSize,
		Codec:           "json",
		Listen:          fmt.Sprintf(":%d", DefaultPort),
	}
}

// IsViewer reports whether this participant is read-only.
func (c Context) IsViewer() bool { return c.Role == protocol.RoleViewer }

// SizePreference converts the stone size setting for the geometry engine.
func (c Context) SizePreference() geometry.SizePreference {
	return geometry.SizePreference{Value: c.StoneSize, Changed: c.StoneSizeSet}
}

// EnsureOwner assigns a fresh owner id when none was configured.
func (c *Context) EnsureOwner() {
	if c.OwnerID == "" {
		c.OwnerID = state.NewOwnerID()
	}
}

// HostTagFor turns a host number into the tag used for color assignment.
func HostTagFor(n int) string {
	if n < 1 {
		return ""
	}
	return fmt.Sprintf("Host %d", n)
}

type fileConfig struct {
	Role            string           `yaml:"role"`
	Room            string           `yaml:"room"`
	Owner           string           `yaml:"owner"`
	Label           string           `yaml:"label"`
	Host            int              `yaml:"host"`
	Color           string           `yaml:"color"`
	CoordinateColor string           `yaml:"coordinate_color"`
	StoneSize       int              `yaml:"stone_size"`
	Grid            []geometry.Point `yaml:"grid"`
	Relay           string           `yaml:"relay"`
	Codec           string           `yaml:"codec"`
	Listen          string           `yaml:"listen"`
	MDNS            *bool            `yaml:"mdns"`
}

// LoadFile overlays the values present in a YAML file onto c.
func (c *Context) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return c.applyYAML(data)
}

func (c *Context) applyYAML(data []byte) error {
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if f.Role != "" {
		r, ok := protocol.ParseRole(f.Role)
		if !ok {
			return fmt.Errorf("%w: %q", ErrBadRole, f.Role)
		}
		c.Role = r
	}
	setString(&c.RoomID, f.Room)
	setString(&c.OwnerID, f.Owner)
	setString(&c.Label, strings.TrimSpace(f.Label))
	setString(&c.HostTag, HostTagFor(f.Host))
	setString(&c.UserColor, f.Color)
	setString(&c.CoordinateColor, f.CoordinateColor)
	if f.StoneSize > 0 {
		c.StoneSize, c.StoneSizeSet = f.StoneSize, true
	}
	if len(f.Grid) > 0 {
		c.InitialGrid = f.Grid
	}
	setString(&c.RelayURL, f.Relay)
	setString(&c.Codec, f.Codec)
	setString(&c.Listen, f.Listen)
	if f.MDNS != nil {
		c.MDNS = *f.MDNS
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate lists configuration problems. None of them stop the program; a
// participant with problems runs unsynchronized or uncalibrated.
func (c Context) Validate() []string {
	var diags []string
	if c.RoomID == "" {
		diags = append(diags, "no room id: running local-only")
	}
	if c.RelayURL == "" {
		diags = append(diags, "no relay url: running local-only")
	}
	if c.IsViewer() && len(c.InitialGrid) == 0 {
		diags = append(diags, "viewer has no initial grid: waiting for a commentator to send one")
	}
	if n := len(c.InitialGrid); n != 0 && n != 4 {
		diags = append(diags, fmt.Sprintf("initial grid needs 4 points, got %d", n))
	}
	if strings.ContainsAny(c.Label, " \t") {
		diags = append(diags, fmt.Sprintf("label %q contains spaces", c.Label))
	}
	if _, err := protocol.CodecByName(c.Codec); err != nil {
		diags = append(diags, err.Error())
	}
	if c.StoneSize <= 0 {
		diags = append(diags, fmt.Sprintf("stone size %d is not positive", c.StoneSize))
	}
	return diags
}
