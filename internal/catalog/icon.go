package catalog

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Icon identifies a category glyph. Markup for each icon lives with the templates.
type Icon int

const (
	IconNone Icon = iota
	IconSparkles
	IconFlame
	IconRocket
	IconStar
	IconZap
	IconCrown
)

var iconNames = map[Icon]string{
	IconNone:     "",
	IconSparkles: "sparkles",
	IconFlame:    "flame",
	IconRocket:   "rocket",
	IconStar:     "star",
	IconZap:      "zap",
	IconCrown:    "crown",
}

// String returns the identifier used in catalog documents and CSS classes.
func (i Icon) String() string {
	return iconNames[i]
}

// ParseIcon maps an identifier to its Icon.
func ParseIcon(name string) (Icon, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for icon, n := range iconNames {
		if n == name {
			return icon, nil
		}
	}
	return IconNone, fmt.Errorf("catalog: unknown icon %q", name)
}

// UnmarshalYAML decodes icon identifiers.
func (i *Icon) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	icon, err := ParseIcon(raw)
	if err != nil {
		return err
	}
	*i = icon
	return nil
}
