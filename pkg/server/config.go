package server

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/NicolasHaas/telechat/pkg/model"
)

// ChannelYAML represents a channel in YAML config.
type ChannelYAML struct {
	Name     string `yaml:"name"`
	MaxUsers int    `yaml:"max_users,omitempty"` // 0 = model.ChannelDefaultMaxUsers
	History  *int   `yaml:"history,omitempty"`   // nil = model.ChannelDefaultHistory
}

// ChannelsConfig is the top-level YAML config for channels.
type ChannelsConfig struct {
	Channels []ChannelYAML `yaml:"channels"`
}

// LoadChannelsFile reads a channels YAML file.
func LoadChannelsFile(path string) ([]model.Channel, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path from user-provided CLI config
	if err != nil {
		return nil, fmt.Errorf("read channels config: %w", err)
	}
	return ParseChannelsYAML(data)
}

// ParseChannelsYAML parses YAML channel definitions, filling in defaults
// and validating every entry. Duplicate names are rejected.
func ParseChannelsYAML(data []byte) ([]model.Channel, error) {
	var cfg ChannelsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse channels config: %w", err)
	}
	if len(cfg.Channels) == 0 {
		return nil, fmt.Errorf("parse channels config: no channels defined")
	}

	seen := make(map[string]bool, len(cfg.Channels))
	chans := make([]model.Channel, 0, len(cfg.Channels))
	for _, entry := range cfg.Channels {
		ch := model.NewChannel(entry.Name)
		if entry.MaxUsers != 0 {
			ch.MaxUsers = entry.MaxUsers
		}
		if entry.History != nil {
			ch.History = *entry.History
		}
		if err := ch.Validate(); err != nil {
			return nil, fmt.Errorf("channel %q: %w", entry.Name, err)
		}
		if seen[ch.Name] {
			return nil, fmt.Errorf("channel %q: defined twice", ch.Name)
		}
		seen[ch.Name] = true
		chans = append(chans, ch)
		slog.Debug("channel from config", "name", ch.Name, "max_users", ch.MaxUsers, "history", ch.History)
	}

	slog.Info("imported channels from YAML", "count", len(chans))
	return chans, nil
}

// ExportChannelsYAML renders channel definitions in the format
// ParseChannelsYAML reads.
func ExportChannelsYAML(chans []model.Channel) ([]byte, error) {
	cfg := ChannelsConfig{Channels: make([]ChannelYAML, 0, len(chans))}
	for _, ch := range chans {
		history := ch.History
		cfg.Channels = append(cfg.Channels, ChannelYAML{
			Name:     ch.Name,
			MaxUsers: ch.MaxUsers,
			History:  &history,
		})
	}
	return yaml.Marshal(&cfg)
}
