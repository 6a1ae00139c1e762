package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const KeyBindingsFileName = "keybindings.json"

// KeyBinding represents a custom keybinding configuration
type KeyBinding struct {
	Command string   `json:"command"` // The command name (e.g., "up", "next_link")
	Keys    []string `json:"keys"`    // The key combinations (e.g., ["k", "up"])
	Help    string   `json:"help"`    // Help text to display
}

// KeyBindingsConfig stores all custom keybindings
type KeyBindingsConfig struct {
	Version  string       `json:"version"`  // Config version for future migrations
	Bindings []KeyBinding `json:"bindings"` // List of custom keybindings
}

// DefaultKeyBindings returns the default keybindings configuration
func DefaultKeyBindings() *KeyBindingsConfig {
	return &KeyBindingsConfig{
		Version: "1.0",
		Bindings: []KeyBinding{
			// Navigation
			{Command: "up", Keys: []string{"up", "k"}, Help: "↑/k"},
			{Command: "down", Keys: []string{"down", "j"}, Help: "↓/j"},
			{Command: "home", Keys: []string{"home", "g"}, Help: "home/g"},
			{Command: "end", Keys: []string{"end", "G"}, Help: "end/G"},
			{Command: "page_up", Keys: []string{"pgup", "b"}, Help: "pgup/b"},
			{Command: "page_down", Keys: []string{"pgdown", " "}, Help: "pgdn/space"},
			{Command: "next_tab", Keys: []string{"tab", "right"}, Help: "tab/→"},
			{Command: "prev_tab", Keys: []string{"shift+tab", "left"}, Help: "shift+tab/←"},

			// Links
			{Command: "next_link", Keys: []string{"n"}, Help: "n"},
			{Command: "prev_link", Keys: []string{"N"}, Help: "N"},
			{Command: "copy_link", Keys: []string{"y"}, Help: "y"},

			// Library
			{Command: "open_dir", Keys: []string{"o"}, Help: "o"},
			{Command: "remove", Keys: []string{"D"}, Help: "D"},
			{Command: "back", Keys: []string{"esc", "backspace"}, Help: "esc"},

			// Document actions
			{Command: "enter", Keys: []string{"enter"}, Help: "↵"},
			{Command: "reload", Keys: []string{"r"}, Help: "r"},
			{Command: "save_file", Keys: []string{"s"}, Help: "s"},
			{Command: "save_folder", Keys: []string{"S"}, Help: "S"},
			{Command: "init_index", Keys: []string{"I"}, Help: "I"},

			// Application
			{Command: "help", Keys: []string{"?"}, Help: "?"},
			{Command: "error_log", Keys: []string{"l"}, Help: "l"},
			{Command: "command_log", Keys: []string{"L"}, Help: "L"},
			{Command: "edit_keys", Keys: []string{"K"}, Help: "K"},
			{Command: "quit", Keys: []string{"q", "ctrl+c"}, Help: "q"},
		},
	}
}

// KeyBindingsPath returns the location of keybindings.json.
func KeyBindingsPath() string {
	return filepath.Join(GetConfigDir(), KeyBindingsFileName)
}

// LoadKeyBindings loads keybindings from the config file. Commands missing
// from the file keep their defaults.
func LoadKeyBindings() (*KeyBindingsConfig, error) {
	data, err := os.ReadFile(KeyBindingsPath())
	if errors.Is(err, os.ErrNotExist) {
		return DefaultKeyBindings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read keybindings: %w", err)
	}

	var config KeyBindingsConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse keybindings: %w", err)
	}

	merged := DefaultKeyBindings()
	for _, b := range config.Bindings {
		merged.SetBinding(b.Command, b.Keys, b.Help)
	}
	if config.Version != "" {
		merged.Version = config.Version
	}
	return merged, nil
}

// Save writes keybindings to the config file
func (k *KeyBindingsConfig) Save() error {
	configPath := KeyBindingsPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(k, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// GetBinding returns the keybinding for a specific command
func (k *KeyBindingsConfig) GetBinding(command string) *KeyBinding {
	for i := range k.Bindings {
		if k.Bindings[i].Command == command {
			return &k.Bindings[i]
		}
	}
	return nil
}

// SetBinding updates or adds a keybinding for a command
func (k *KeyBindingsConfig) SetBinding(command string, keys []string, help string) {
	for i, binding := range k.Bindings {
		if binding.Command == command {
			k.Bindings[i].Keys = keys
			if help != "" {
				k.Bindings[i].Help = help
			}
			return
		}
	}

	k.Bindings = append(k.Bindings, KeyBinding{
		Command: command,
		Keys:    keys,
		Help:    help,
	})
}

// ValidateBindings checks for conflicts in keybindings
func (k *KeyBindingsConfig) ValidateBindings() map[string][]string {
	conflicts := make(map[string][]string)
	keyToCommands := make(map[string][]string)

	for _, binding := range k.Bindings {
		for _, key := range binding.Keys {
			keyToCommands[key] = append(keyToCommands[key], binding.Command)
		}
	}

	for key, commands := range keyToCommands {
		if len(commands) > 1 {
			sort.Strings(commands)
			conflicts[key] = commands
		}
	}

	return conflicts
}
