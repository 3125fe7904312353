// Package config with configuration models and utilities
package config

import (
	"fmt"
	"io"

	colorful "github.com/lucasb-eyer/go-colorful"
	yaml "gopkg.in/yaml.v2"
)

// Defaults applied to missing configuration values
const (
	DefaultPrefix   = "+"
	DefaultMuteRole = "Muted"
	DefaultColor    = "#3498db"
)

// DefaultRules are shown by rules command when none are configured
var DefaultRules = []string{
	"Be respectful to everyone.",
	"No spamming or flooding the chat.",
	"No offensive language.",
	"Follow Discord Terms of Service.",
}

// Read reads configuration
func Read(reader io.Reader) (root *Root, err error) {
	root = &Root{}

	err = yaml.NewDecoder(reader).Decode(root)
	if err == io.EOF {
		err = nil
	}

	if err != nil {
		return nil, err
	}

	root.SetDefaults()

	if _, err = ParseColor(root.Private.Color); err != nil {
		return nil, err
	}

	return root, nil
}

// Write writes configuration
func Write(writer io.Writer, root *Root) (err error) {
	err = yaml.NewEncoder(writer).Encode(root)

	return
}

// SetDefaults fills empty values with defaults
func (root *Root) SetDefaults() {
	if root.Private.Prefix == "" {
		root.Private.Prefix = DefaultPrefix
	}

	if root.Private.MuteRole == "" {
		root.Private.MuteRole = DefaultMuteRole
	}

	if root.Private.Color == "" {
		root.Private.Color = DefaultColor
	}

	if len(root.Private.Rules) == 0 {
		root.Private.Rules = append([]string(nil), DefaultRules...)
	}
}

// Server returns server specific configuration, nil if absent
func (root *Root) Server(guildID string) *Server {
	for i := range root.Servers {
		if root.Servers[i].GuildID == guildID {
			return &root.Servers[i]
		}
	}

	return nil
}

// ParseColor converts hex color notation into embed color value
func ParseColor(s string) (int, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return 0, fmt.Errorf("parsing color %q: %w", s, err)
	}

	r, g, b := c.RGB255()

	return int(r)<<16 | int(g)<<8 | int(b), nil
}
