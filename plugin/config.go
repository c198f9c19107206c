package plugin

import "strings"

// Override replaces a descriptor's enablement and environments.
type Override struct {
	Enabled      *bool    `yaml:"enabled" mapstructure:"enabled"`
	Environments []string `yaml:"environments" mapstructure:"environments"`
}

// Config holds registration settings.
type Config struct {
	// FailOnError aborts startup when any plugin fails to register.
	FailOnError *bool `yaml:"fail_on_error" mapstructure:"fail_on_error"`
	// Overrides is keyed by plugin name, matched case-insensitively since
	// config keys are lowercased on load.
	Overrides map[string]Override `yaml:"overrides" mapstructure:"overrides"`
}

// ShouldFail reports whether registration errors abort startup (default true).
func (c *Config) ShouldFail() bool {
	return c.FailOnError == nil || *c.FailOnError
}

// Apply returns descriptors with the configured overrides applied.
func (c *Config) Apply(descriptors []Descriptor) []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors)
	if len(c.Overrides) == 0 {
		return out
	}
	for i := range out {
		for name, o := range c.Overrides {
			if !strings.EqualFold(name, out[i].Name) {
				continue
			}
			if o.Enabled != nil {
				out[i].Disabled = !*o.Enabled
			}
			if o.Environments != nil {
				out[i].Environments = o.Environments
			}
		}
	}
	return out
}
