package keys

import (
	"github.com/charmbracelet/bubbles/key"

	"mdviewer/config"
)

type KeyName int

const (
	KeyUp KeyName = iota
	KeyDown
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyEnter
	KeyQuit

	KeyNextTab // Cycles forward through open documents.
	KeyPrevTab

	KeyNextLink // Moves link focus forward in the current document.
	KeyPrevLink
	KeyCopyLink // Copies the focused link's URL.

	KeyOpenDir // Prompts for a folder to open.
	KeyRemove  // Removes the selected library entry.
	KeyBack    // Returns to the library.

	KeyReload
	KeySaveFile   // Packs the open folder into storage.
	KeySaveFolder // Copies the open folder to a new location.
	KeyInitIndex  // Writes index.json for the open folder.

	KeyHelp
	KeyErrorLog
	KeyCommandLog
	KeyEditKeys // Opens the keybinding editor.

	// KeySubmit confirms a text prompt.
	KeySubmit
)

// commandToKeyName maps keybindings.json command names to key names.
var commandToKeyName = map[string]KeyName{
	"up":          KeyUp,
	"down":        KeyDown,
	"home":        KeyHome,
	"end":         KeyEnd,
	"page_up":     KeyPageUp,
	"page_down":   KeyPageDown,
	"enter":       KeyEnter,
	"quit":        KeyQuit,
	"next_tab":    KeyNextTab,
	"prev_tab":    KeyPrevTab,
	"next_link":   KeyNextLink,
	"prev_link":   KeyPrevLink,
	"copy_link":   KeyCopyLink,
	"open_dir":    KeyOpenDir,
	"remove":      KeyRemove,
	"back":        KeyBack,
	"reload":      KeyReload,
	"save_file":   KeySaveFile,
	"save_folder": KeySaveFolder,
	"init_index":  KeyInitIndex,
	"help":        KeyHelp,
	"error_log":   KeyErrorLog,
	"command_log": KeyCommandLog,
	"edit_keys":   KeyEditKeys,
}

// helpTexts is the description shown next to each binding.
var helpTexts = map[KeyName]string{
	KeyUp:         "up",
	KeyDown:       "down",
	KeyHome:       "top",
	KeyEnd:        "bottom",
	KeyPageUp:     "page up",
	KeyPageDown:   "page down",
	KeyEnter:      "open",
	KeyQuit:       "quit",
	KeyNextTab:    "next document",
	KeyPrevTab:    "prev document",
	KeyNextLink:   "next link",
	KeyPrevLink:   "prev link",
	KeyCopyLink:   "copy link",
	KeyOpenDir:    "open folder",
	KeyRemove:     "remove",
	KeyBack:       "library",
	KeyReload:     "reload",
	KeySaveFile:   "save to file",
	KeySaveFolder: "save to folder",
	KeyInitIndex:  "init index",
	KeyHelp:       "help",
	KeyErrorLog:   "error log",
	KeyCommandLog: "command log",
	KeyEditKeys:   "edit keys",
}

// GlobalKeyStringsMap maps key strings to key names. It is rebuilt from the
// keybinding config by InitializeCustomKeyBindings.
var GlobalKeyStringsMap map[string]KeyName

// GlobalkeyBindings maps key names to bubbles key bindings.
var GlobalkeyBindings map[KeyName]key.Binding

func init() {
	apply(config.DefaultKeyBindings())
}

// apply rebuilds both global maps from kb.
func apply(kb *config.KeyBindingsConfig) {
	strs := make(map[string]KeyName)
	bindings := make(map[KeyName]key.Binding)
	for _, b := range kb.Bindings {
		name, ok := commandToKeyName[b.Command]
		if !ok {
			continue
		}
		for _, k := range b.Keys {
			strs[k] = name
		}
		bindings[name] = key.NewBinding(
			key.WithKeys(b.Keys...),
			key.WithHelp(b.Help, helpTexts[name]),
		)
	}

	// -- Special keybindings --

	bindings[KeySubmit] = key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	)

	GlobalKeyStringsMap = strs
	GlobalkeyBindings = bindings
}

// InitializeCustomKeyBindings loads custom keybindings from config
func InitializeCustomKeyBindings() error {
	kbConfig, err := config.LoadKeyBindings()
	if err != nil {
		return err
	}
	apply(kbConfig)
	return nil
}

// GetKeyName returns the KeyName for a given key string.
func GetKeyName(keyStr string) (KeyName, bool) {
	keyName, ok := GlobalKeyStringsMap[keyStr]
	return keyName, ok
}

// Help returns the binding for name, for use in help views.
func Help(name KeyName) key.Binding {
	return GlobalkeyBindings[name]
}
