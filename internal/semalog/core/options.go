package core

import "fmt"

// ConfigurationOptionType is the type of value a ConfigurationOption accepts.
type ConfigurationOptionType int

const (
	// BoolConfigurationOption means the option accepts a boolean value.
	BoolConfigurationOption ConfigurationOptionType = iota + 1
	// IntConfigurationOption means the option accepts an integer value.
	IntConfigurationOption
	// StringConfigurationOption means the option accepts a string value.
	StringConfigurationOption
	// PathConfigurationOption means the option accepts a filesystem path.
	PathConfigurationOption
)

func (t ConfigurationOptionType) String() string {
	switch t {
	case BoolConfigurationOption:
		return "bool"
	case IntConfigurationOption:
		return "int"
	case StringConfigurationOption:
		return "string"
	case PathConfigurationOption:
		return "path"
	default:
		panic(fmt.Sprintf("unknown ConfigurationOptionType: %d", t))
	}
}

// ConfigurationOption describes one changeable property of a component,
// in the same shape hercules' PipelineItem.ListConfigurationOptions() uses.
type ConfigurationOption struct {
	Name        string
	Description string
	Flag        string
	Type        ConfigurationOptionType
	Default     interface{}
}

// FormatDefault renders the option's default value the way a --help listing would.
func (o ConfigurationOption) FormatDefault() string {
	switch o.Type {
	case StringConfigurationOption, PathConfigurationOption:
		return fmt.Sprintf("%v", o.Default)
	default:
		return fmt.Sprintf("%v", o.Default)
	}
}
