package serializer

// WithIndent makes the serializer emit one field per line, nested levels
// prefixed with indent. An empty indent emits compact single-line output.
func WithIndent(indent string) Option {
	return func(s *Serializer) {
		s.indent = indent
	}
}

// Option configures the serializer through the functional options pattern.
type Option func(*Serializer)
