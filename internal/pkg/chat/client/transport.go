package client

import "context"

// Handle identifies one live channel subscription.
type Handle interface{}

// Transport is the client's view of the channel infrastructure. The
// implementation owns the connection handshake and the grant round-trip to
// the authorization endpoint; this package only subscribes, binds and tears
// down. Subscribe blocks until the handshake resolves.
type Transport interface {
	Subscribe(ctx context.Context, channel string) (Handle, error)
	Unsubscribe(h Handle)
	Bind(h Handle, event string, fn func(payload []byte))
}

// SubscriptionState tracks one channel client's lifecycle.
type SubscriptionState int

const (
	StateUnsubscribed SubscriptionState = iota
	StateSubscribing
	StateSubscribed
)

func (s SubscriptionState) String() string {
	switch s {
	case StateSubscribing:
		return "subscribing"
	case StateSubscribed:
		return "subscribed"
	default:
		return "unsubscribed"
	}
}
