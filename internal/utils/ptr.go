package utils

func Ptr[T any](v T) *T {
	return &v
}

// Clone copies the pointed-to value so the result shares nothing with p.
func Clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
