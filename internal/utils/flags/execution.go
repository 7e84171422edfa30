// Package flags provides helpers for binding yes/no toggle and choice flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
)

// ToggleFlagDefinition captures a single toggle flag's configuration.
type ToggleFlagDefinition struct {
	Name         string
	Shorthand    string
	Usage        string
	DefaultValue bool
}

// BindToggleFlags registers each definition as a toggle flag on the command's local flag set.
func BindToggleFlags(command *cobra.Command, definitions ...ToggleFlagDefinition) {
	if command == nil {
		return
	}

	for _, definition := range definitions {
		AddToggleFlag(command.Flags(), nil, definition.Name, definition.Shorthand, definition.DefaultValue, definition.Usage)
	}
}

// ChangedToggleValue reports the toggle value and whether it was explicitly provided on the command line.
func ChangedToggleValue(command *cobra.Command, name string) (bool, bool) {
	if command == nil {
		return false, false
	}

	flag := command.Flags().Lookup(name)
	if flag == nil || !flag.Changed {
		return false, false
	}

	toggleValue, parseError := parseToggleValue(flag.Value.String())
	if parseError != nil {
		return false, false
	}
	return toggleValue, true
}
