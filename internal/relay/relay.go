package relay

import (
	"context"
	"io"
	"sync"

	"coffeeRelay/internal/errs"

	"go.uber.org/zap"
)

// Relay owns the registry, router and bridge of one process. Build it with
// New, call Start once before accepting connections and Close at shutdown.
type Relay struct {
	Registry *Registry
	Router   *Router
	Bridge   *Bridge

	broker       Broker
	logger       *zap.Logger
	mu           sync.Mutex
	subscription io.Closer
	started      bool
	closed       bool
}

type Option func(*Relay)

// WithBroker shares room emissions with other relay processes.
func WithBroker(broker Broker) Option {
	return func(r *Relay) {
		r.broker = broker
	}
}

func New(logger *zap.Logger, options ...Option) *Relay {
	r := &Relay{logger: logger}
	for _, option := range options {
		option(r)
	}
	r.Registry = NewRegistry()
	r.Router = NewRouter(r.Registry, r.broker, logger)
	r.Bridge = NewBridge(r.Router, r.Registry)
	return r
}

// Start subscribes to the broker, if any. The subscription is confirmed
// before Start returns.
func (r *Relay) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errs.ErrRelayClosed
	}
	if r.started || r.broker == nil {
		r.started = true
		return nil
	}

	subscription, err := r.broker.Subscribe(ctx, r.Router.handleBrokerMessage)
	if err != nil {
		return err
	}
	r.subscription = subscription
	r.started = true
	r.logger.Info("relay subscribed to broker")
	return nil
}

// Close stops the broker subscription and closes every connection. Calling
// it more than once is harmless.
func (r *Relay) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	subscription := r.subscription
	r.mu.Unlock()

	var firstErr error
	if subscription != nil {
		if err := subscription.Close(); err != nil {
			firstErr = err
		}
	}
	count := r.Registry.Len()
	closeErrs := r.Registry.CloseAll()
	for _, err := range closeErrs {
		r.logger.Debug("error closing connection", zap.Error(err))
	}
	r.logger.Info("relay closed", zap.Int("connections_closed", count))
	return firstErr
}
