package dedupe

type options struct {
	capacityHint int
}

// Option applies a configuration option to NewInMemoryDeduper.
type Option func(*options)

// WithCapacityHint pre-sizes the underlying set.
func WithCapacityHint(n int) Option {
	return func(o *options) {
		o.capacityHint = n
	}
}
