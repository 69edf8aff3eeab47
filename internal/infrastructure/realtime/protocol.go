package realtime

import "encoding/json"

// Protocol-level event names exchanged with clients, as opposed to the
// application events carried inside Frame.Data.
const (
	EventConnectionEstablished = "connection_established"
	EventSubscribe             = "subscribe"
	EventUnsubscribe           = "unsubscribe"
	EventSubscriptionError     = "subscription_error"
)

// Frame is the envelope for every message on the socket, both directions.
type Frame struct {
	Event   string          `json:"event"`
	Channel string          `json:"channel,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// EncodeFrame marshals an event payload into a wire frame.
func EncodeFrame(channel, event string, data any) ([]byte, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(Frame{Event: event, Channel: channel, Data: raw})
}

// ConnectionEstablished is sent once after the websocket upgrade; the client
// echoes SocketID when requesting channel grants.
type ConnectionEstablished struct {
	SocketID string `json:"socket_id"`
}

// SubscribeRequest is the client -> server subscription handshake. Auth is
// the grant issued by the authorization endpoint; ChannelData carries the
// signed presence identity for presence channels.
type SubscribeRequest struct {
	Channel     string `json:"channel"`
	Auth        string `json:"auth"`
	ChannelData string `json:"channel_data,omitempty"`
}

// SubscriptionError reports a rejected handshake for one channel.
type SubscriptionError struct {
	Channel string `json:"channel"`
	Code    string `json:"code"`
	Reason  string `json:"reason"`
}
