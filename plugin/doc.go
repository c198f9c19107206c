// Package plugin assembles the request pipeline from an ordered list of
// descriptors.
//
// A Descriptor names one cross-cutting behavior (request ids, logging, auth,
// error handling, CORS, ...) together with its options and the conditions
// under which it applies. The Registrar walks the list in order, skips
// disabled or inapplicable entries, activates the rest against a Host and
// reports what happened in an Outcome:
//
//	host := plugin.NewHost(engine, cfg.Environment, log)
//	outcome := plugin.NewRegistrar(host, log).Register(ctx, plugin.Builtins(opts))
//	if !outcome.OK() { ... }
//
// Activation failures are data in the Outcome, never a panic or an aborted
// batch. Later descriptors may rely on capabilities earlier ones installed
// on the Host (the auth plugin needs the token service from the jwt plugin).
package plugin
