package search

import (
	"go.uber.org/zap"

	"github.com/azybler/pathfinder/pkg/pq"
)

// DefaultCheckInterval is how many node expansions pass between context
// checks.
const DefaultCheckInterval = 100

type options struct {
	queue         pq.Kind
	logger        *zap.Logger
	checkInterval int
}

// Option configures a finder.
type Option func(*options)

// WithQueue selects the priority-queue backend. The kind is checked when a
// queue is built, so an unknown kind makes Find fail with
// pq.ErrUnknownKind. The breadth-first bidirectional finders use plain
// FIFO frontiers and ignore it.
func WithQueue(kind pq.Kind) Option {
	return func(o *options) { o.queue = kind }
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCheckInterval sets how often the context is polled.
func WithCheckInterval(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.checkInterval = n
		}
	}
}

func newOptions(name string, opts []Option) options {
	o := options{
		queue:         pq.Binary,
		logger:        zap.NewNop(),
		checkInterval: DefaultCheckInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.Named(name)
	return o
}

// poll returns the context error every checkInterval iterations.
func (o *options) poll(ctxErr func() error, i int) error {
	if i%o.checkInterval != 0 {
		return nil
	}
	return ctxErr()
}
