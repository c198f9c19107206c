package plugin

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// ActivateFunc installs a behavior on the host using the descriptor options.
type ActivateFunc func(ctx context.Context, host *Host, options any) error

// Descriptor describes one pipeline behavior and when it applies.
type Descriptor struct {
	Name     string
	Activate ActivateFunc
	Options  any
	// Disabled skips the descriptor regardless of environment.
	Disabled bool
	// Environments restricts activation to the listed environments.
	// Empty means every environment.
	Environments []string
}

// AppliesTo reports whether env is among the descriptor environments.
func (d Descriptor) AppliesTo(env string) bool {
	return len(d.Environments) == 0 || slices.Contains(d.Environments, env)
}

// Skipped records a descriptor that was not activated.
type Skipped struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func (s Skipped) String() string { return s.Name + ": " + s.Reason }

// Failure records a descriptor whose activation failed.
type Failure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func (f Failure) String() string { return f.Name + ": " + f.Reason }

// Outcome summarizes one registration batch.
type Outcome struct {
	Registered []string  `json:"registered"`
	Skipped    []Skipped `json:"skipped"`
	Errors     []Failure `json:"errors"`
}

// OK reports whether every descriptor was either registered or skipped.
func (o Outcome) OK() bool { return len(o.Errors) == 0 }

// Err folds the failures into one error, or nil.
func (o Outcome) Err() error {
	if o.OK() {
		return nil
	}
	parts := make([]string, len(o.Errors))
	for i, f := range o.Errors {
		parts[i] = f.String()
	}
	return fmt.Errorf("plugin registration failed: %s", strings.Join(parts, "; "))
}

// Typed adapts a function taking concrete options into an ActivateFunc.
// Options of any other type fail the activation.
func Typed[T any](fn func(ctx context.Context, host *Host, opts T) error) ActivateFunc {
	return func(ctx context.Context, host *Host, options any) error {
		opts, ok := options.(T)
		if !ok {
			var zero T
			return fmt.Errorf("invalid options: expected %T, got %T", zero, options)
		}
		return fn(ctx, host, opts)
	}
}
