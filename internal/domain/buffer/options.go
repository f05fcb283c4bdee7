package buffer

// Option applies a configuration option to a Ring.
type Option[T any] func(*Ring[T])

// WithCapacity sets the fixed capacity. Non-positive values are ignored
// and the default is kept.
func WithCapacity[T any](capacity int) Option[T] {
	return func(r *Ring[T]) {
		if capacity > 0 {
			r.capacity = capacity
		}
	}
}
