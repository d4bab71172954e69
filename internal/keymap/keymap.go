package keymap

import (
	"strings"

	"charm.land/bubbles/v2/key"

	"github.com/jpsank/breaker/internal/config"
)

// Action identifies a configurable keybinding.
type Action string

const (
	ActionLeft  Action = "left"
	ActionRight Action = "right"
	ActionCopy  Action = "copy"
	ActionQuit  Action = "quit"
)

type bindingDef struct {
	action Action
	keys   []string
	desc   string
}

// KeyMap defines all keybindings for the viewer.
type KeyMap struct {
	Left  key.Binding
	Right key.Binding
	Copy  key.Binding
	Quit  key.Binding
}

// New builds a keymap from defaults, applying any user overrides.
func New(cfg config.KeyMapConfig) KeyMap {
	return KeyMap{
		Left: bindingFromDef(cfg, bindingDef{
			action: ActionLeft,
			keys:   []string{"left"},
			desc:   "previous",
		}),
		Right: bindingFromDef(cfg, bindingDef{
			action: ActionRight,
			keys:   []string{"right"},
			desc:   "next",
		}),
		Copy: bindingFromDef(cfg, bindingDef{
			action: ActionCopy,
			keys:   []string{"c"},
			desc:   "copy selection",
		}),
		Quit: bindingFromDef(cfg, bindingDef{
			action: ActionQuit,
			keys:   []string{"q", "ctrl+c"},
			desc:   "quit",
		}),
	}
}

func bindingFromDef(cfg config.KeyMapConfig, def bindingDef) key.Binding {
	keys, ok := cfg.BindingFor(string(def.action))
	if !ok {
		keys = def.keys
	}
	helpKey := strings.Join(keys, "/")
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(helpKey, def.desc),
	)
}

// PrimaryKey returns the first key in the binding, if present.
func PrimaryKey(binding key.Binding) string {
	keys := binding.Keys()
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

// BindingHint returns a single key hint for a binding, falling back to help text.
func BindingHint(binding key.Binding) string {
	key := PrimaryKey(binding)
	if key == "" {
		return binding.Help().Key
	}
	return key
}

// Hints returns "key desc" pairs for the status bar, in display order.
func Hints(km KeyMap) []string {
	var hints []string
	for _, b := range []key.Binding{km.Left, km.Right, km.Copy, km.Quit} {
		if hint := BindingHint(b); hint != "" {
			hints = append(hints, hint+" "+b.Help().Desc)
		}
	}
	return hints
}

// BindingForAction returns the binding for the given action.
func BindingForAction(km KeyMap, action Action) key.Binding {
	switch action {
	case ActionLeft:
		return km.Left
	case ActionRight:
		return km.Right
	case ActionCopy:
		return km.Copy
	case ActionQuit:
		return km.Quit
	default:
		return key.Binding{}
	}
}
