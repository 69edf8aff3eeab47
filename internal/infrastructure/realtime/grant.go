package realtime

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"strings"
)

// GrantSigner signs and verifies channel subscription grants. A grant is
// "key:hexmac" where the MAC covers "socketID:channel" (plus ":channelData"
// for presence channels), so it is only usable by the connection it was
// issued to, for the channel it names.
type GrantSigner struct {
	key    string
	secret []byte
}

// NewGrantSigner constructs a signer from explicit credentials.
func NewGrantSigner(key, secret string) (*GrantSigner, error) {
	if key == "" || secret == "" {
		return nil, errors.New("realtime: app key and secret are required")
	}
	return &GrantSigner{key: key, secret: []byte(secret)}, nil
}

// NewGrantSignerFromEnv reads CHANNEL_APP_KEY and CHANNEL_APP_SECRET.
func NewGrantSignerFromEnv() (*GrantSigner, error) {
	key := strings.TrimSpace(os.Getenv("CHANNEL_APP_KEY"))
	secret := strings.TrimSpace(os.Getenv("CHANNEL_APP_SECRET"))
	if key == "" || secret == "" {
		return nil, errors.New("realtime: CHANNEL_APP_KEY and CHANNEL_APP_SECRET environment variables are not set")
	}
	return &GrantSigner{key: key, secret: []byte(secret)}, nil
}

// Sign issues a grant for the (socket, channel) pair. channelData is empty
// for plain channels.
func (s *GrantSigner) Sign(socketID, channel, channelData string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(signingString(socketID, channel, channelData)))
	return s.key + ":" + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a grant presented during the subscribe handshake.
func (s *GrantSigner) Verify(grant, socketID, channel, channelData string) bool {
	expected := s.Sign(socketID, channel, channelData)
	return hmac.Equal([]byte(grant), []byte(expected))
}

func signingString(socketID, channel, channelData string) string {
	if channelData == "" {
		return socketID + ":" + channel
	}
	return socketID + ":" + channel + ":" + channelData
}
