package mongo

import "time"

// WithMaxTime sets the server-side time limit of find, aggregate and count
// operations. Zero means no limit.
func WithMaxTime(d time.Duration) Option {
	return func(c *Collection) {
		c.maxTime = d
	}
}

// WithConnectTimeout sets the connect and server selection timeouts used by
// [Connect]. Defaults to 10 seconds.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Collection) {
		c.connectTimeout = d
	}
}

// Option configures the collection through the functional options pattern.
type Option func(*Collection)
