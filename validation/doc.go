// Package validation checks inbound data against declared schemas.
//
// A Schema names a Go struct whose `validate` tags describe the rules
// (go-playground/validator). Decoding a request part through a schema
// yields the typed, coerced value or an Errors value listing every
// violated field:
//
//	var signup = validation.For[SignupRequest]()
//	v, err := signup.DecodeJSON(engine, body)
//
// Types may add cross-field rules by implementing Refiner and fill in
// defaults by implementing Defaulter.
//
// The fluent Validator covers rules that live in services rather than in
// request schemas.
package validation
