package plugin

import (
	"context"
	"fmt"

	"github.com/kbukum/invoxia/logger"
)

// Skip reasons.
const (
	ReasonDisabled = "Plugin disabled"
)

// Registrar activates descriptors against one host.
type Registrar struct {
	host *Host
	log  *logger.Logger
}

// NewRegistrar creates a registrar for host.
func NewRegistrar(host *Host, log *logger.Logger) *Registrar {
	if log == nil {
		log = logger.Nop()
	}
	return &Registrar{host: host, log: log.WithComponent("plugins")}
}

// Register processes descriptors in list order and returns the outcome.
// It never reorders and never stops early: a failed activation is recorded
// and the next descriptor is processed.
func (r *Registrar) Register(ctx context.Context, descriptors []Descriptor) Outcome {
	out := Outcome{
		Registered: []string{},
		Skipped:    []Skipped{},
		Errors:     []Failure{},
	}
	seen := make(map[string]bool, len(descriptors))

	for _, d := range descriptors {
		if seen[d.Name] {
			r.fail(&out, d.Name, "duplicate plugin name")
			continue
		}
		seen[d.Name] = true

		if d.Disabled {
			r.skip(&out, d.Name, ReasonDisabled)
			continue
		}
		if !d.AppliesTo(r.host.Env) {
			r.skip(&out, d.Name, fmt.Sprintf("Not enabled for %s environment", r.host.Env))
			continue
		}
		if err := r.activate(ctx, d); err != nil {
			r.fail(&out, d.Name, err.Error())
			continue
		}
		out.Registered = append(out.Registered, d.Name)
		r.log.Info("Plugin registered", logger.Fields(logger.FieldPlugin, d.Name))
	}

	r.log.Info("Plugin registration summary", logger.Fields(
		"registered", len(out.Registered),
		"skipped", len(out.Skipped),
		"errors", len(out.Errors),
	))
	if !out.OK() {
		r.log.Warn("Some plugins failed to register", logger.Fields("errors", out.Errors))
	}
	return out
}

func (r *Registrar) activate(ctx context.Context, d Descriptor) (err error) {
	if d.Activate == nil {
		return fmt.Errorf("no activation function")
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic during activation: %v", p)
		}
	}()
	return d.Activate(ctx, r.host, d.Options)
}

func (r *Registrar) skip(out *Outcome, name, reason string) {
	out.Skipped = append(out.Skipped, Skipped{Name: name, Reason: reason})
	r.log.Debug("Plugin skipped", logger.Fields(logger.FieldPlugin, name, "reason", reason))
}

func (r *Registrar) fail(out *Outcome, name, reason string) {
	out.Errors = append(out.Errors, Failure{Name: name, Reason: reason})
	r.log.Error("Failed to register plugin", logger.Fields(logger.FieldPlugin, name, logger.FieldError, reason))
}
