package middleware

import (
	"bytes"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/invoxia/errors"
	"github.com/kbukum/invoxia/validation"
)

// Context keys under which validated request parts are stored.
const (
	validatedBodyKey    = "validated.body"
	validatedQueryKey   = "validated.query"
	validatedParamsKey  = "validated.params"
	validatedHeadersKey = "validated.headers"
)

// Schemas names the schema for each request part a route validates.
// Nil entries are not checked.
type Schemas struct {
	Body    *validation.Schema
	Query   *validation.Schema
	Params  *validation.Schema
	Headers *validation.Schema
}

// Empty reports whether no request part has a schema.
func (s Schemas) Empty() bool {
	return s.Body == nil && s.Query == nil && s.Params == nil && s.Headers == nil
}

// Validate decodes and checks body, query, params and headers in that order.
// The first failing part raises one Validation error whose message lists
// every violated field of that part. Other decoding failures are passed on
// unchanged.
func Validate(engine *validation.Engine, schemas Schemas) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := validateRequest(c, engine, schemas); err != nil {
			if verrs, ok := validation.AsErrors(err); ok {
				err = errors.Validation(verrs.Message()).WithDetail("fields", verrs)
			}
			abortWith(c, err)
			return
		}
		c.Next()
	}
}

func validateRequest(c *gin.Context, engine *validation.Engine, schemas Schemas) error {
	if schemas.Body != nil {
		data, err := readBody(c)
		if err != nil {
			return err
		}
		v, err := schemas.Body.DecodeJSON(engine, data)
		if err != nil {
			return err
		}
		c.Set(validatedBodyKey, v)
	}

	if schemas.Query != nil {
		v, err := schemas.Query.DecodeValues(engine, c.Request.URL.Query(), "form")
		if err != nil {
			return err
		}
		c.Set(validatedQueryKey, v)
	}

	if schemas.Params != nil {
		params := make(map[string][]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = []string{p.Value}
		}
		v, err := schemas.Params.DecodeValues(engine, params, "uri")
		if err != nil {
			return err
		}
		c.Set(validatedParamsKey, v)
	}

	// Headers are decoded alongside the raw header map, never in place of it.
	if schemas.Headers != nil {
		headers := make(map[string][]string, len(c.Request.Header))
		for k, vals := range c.Request.Header {
			headers[strings.ToLower(k)] = vals
		}
		v, err := schemas.Headers.DecodeValues(engine, headers, "header")
		if err != nil {
			return err
		}
		c.Set(validatedHeadersKey, v)
	}
	return nil
}

// readBody reads the whole body and puts it back for later readers.
func readBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil, nil
	}
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, validation.Errors{{Path: "body", Reason: "Payload too large"}}
		}
		return nil, err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}

// Body returns the validated body for the current route.
func Body[T any](c *gin.Context) *T { return validated[T](c, validatedBodyKey) }

// Query returns the validated query for the current route.
func Query[T any](c *gin.Context) *T { return validated[T](c, validatedQueryKey) }

// Params returns the validated path params for the current route.
func Params[T any](c *gin.Context) *T { return validated[T](c, validatedParamsKey) }

// Headers returns the validated headers for the current route.
func Headers[T any](c *gin.Context) *T { return validated[T](c, validatedHeadersKey) }

func validated[T any](c *gin.Context, key string) *T {
	v, ok := c.Get(key)
	if !ok {
		return nil
	}
	t, _ := v.(*T)
	return t
}
