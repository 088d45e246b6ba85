package hosting

import "github.com/bft-labs/svchost/pkg/lifecycle"

// SetupPolicy can be implemented by a service to choose which setup
// outcomes make Start fail. Options passed to New take precedence.
type SetupPolicy interface {
	FailOnSetupNotStarted() bool
	FailOnSetupUnsuccessful() bool
}

// Option configures optional behavior of a HostedService.
type Option func(*options)

// options holds the optional configuration for a HostedService.
type options struct {
	name                    string
	failOnSetupNotStarted   *bool
	failOnSetupUnsuccessful *bool
	observers               []lifecycle.Observer
}

// WithName sets the service name attached to every log entry.
// If not provided, "service" is used.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithFailOnSetupNotStarted sets whether Start fails when setup ends
// SetupNotStarted. Default: true.
func WithFailOnSetupNotStarted(fail bool) Option {
	return func(o *options) {
		o.failOnSetupNotStarted = &fail
	}
}

// WithFailOnSetupUnsuccessful sets whether Start fails when setup ends
// SetupUnsuccessful. Default: true.
func WithFailOnSetupUnsuccessful(fail bool) Option {
	return func(o *options) {
		o.failOnSetupUnsuccessful = &fail
	}
}

// WithObserver registers an additional lifecycle observer, such as a
// metrics collector. Observers are notified after the logger.
func WithObserver(obs lifecycle.Observer) Option {
	return func(o *options) {
		o.observers = append(o.observers, obs)
	}
}

// resolvePolicy applies defaults, then the service's own policy, then
// explicit options.
func resolvePolicy(svc lifecycle.Service, o options) (notStarted, unsuccessful bool) {
	notStarted, unsuccessful = true, true
	if p, ok := svc.(SetupPolicy); ok {
		notStarted = p.FailOnSetupNotStarted()
		unsuccessful = p.FailOnSetupUnsuccessful()
	}
	if o.failOnSetupNotStarted != nil {
		notStarted = *o.failOnSetupNotStarted
	}
	if o.failOnSetupUnsuccessful != nil {
		unsuccessful = *o.failOnSetupUnsuccessful
	}
	return notStarted, unsuccessful
}
