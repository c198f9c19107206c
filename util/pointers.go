package util

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// NilIfEmpty returns nil for "" and a pointer to s otherwise.
func NilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
