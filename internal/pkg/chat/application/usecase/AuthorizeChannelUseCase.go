package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	cacheport "minglemart/internal/infrastructure/cache/port"
	chat "minglemart/internal/pkg/chat/application/domain"
	repository "minglemart/internal/pkg/chat/persistence/repository/port"
)

// grantTTL bounds how long an issued grant stays redeemable. It only needs
// to cover the client's subscribe round-trip.
const grantTTL = 2 * time.Minute

// GrantSigner is the signing surface of the channel infrastructure.
type GrantSigner interface {
	Sign(socketID, channel, channelData string) string
	Verify(grant, socketID, channel, channelData string) bool
}

// AuthorizeChannelInput is the auth-endpoint request: the authenticated user,
// the connection's handshake identifier and the requested channel.
type AuthorizeChannelInput struct {
	User     *chat.User
	SocketID string
	Channel  string
}

// AuthorizeChannelOutput is the signed grant. ChannelData is only set for
// presence channels and carries the public identity other subscribers render.
type AuthorizeChannelOutput struct {
	Auth        string `json:"auth"`
	ChannelData string `json:"channel_data,omitempty"`
}

// presenceChannelData is the identity payload bound into presence grants.
type presenceChannelData struct {
	UserID   string `json:"user_id"`
	UserInfo struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar,omitempty"`
	} `json:"user_info"`
}

// AuthorizeChannelUseCase is the channel authorization gate. Conversation
// channels require the requester to be a participant; the presence channel
// admits any authenticated user. Grants are single-use: Consume burns them
// through the cache so a leaked grant cannot admit a second subscription.
type AuthorizeChannelUseCase struct {
	Repo   repository.ChatRepository
	Signer GrantSigner
	Cache  cacheport.Cache // nil skips single-use enforcement
}

func NewAuthorizeChannelUseCase(repo repository.ChatRepository, signer GrantSigner, cache cacheport.Cache) *AuthorizeChannelUseCase {
	return &AuthorizeChannelUseCase{Repo: repo, Signer: signer, Cache: cache}
}

func (uc *AuthorizeChannelUseCase) Execute(ctx context.Context, in AuthorizeChannelInput) (*AuthorizeChannelOutput, error) {
	if in.User == nil {
		return nil, chat.ErrUnauthorized
	}
	if in.SocketID == "" || in.Channel == "" {
		return nil, chat.ErrInvalidConversation
	}

	if in.Channel == chat.PresenceChannel {
		data := presenceChannelData{UserID: in.User.ID}
		data.UserInfo.Name = in.User.DisplayName
		data.UserInfo.Avatar = in.User.AvatarURL
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode channel data: %w", err)
		}
		channelData := string(raw)
		return &AuthorizeChannelOutput{
			Auth:        uc.Signer.Sign(in.SocketID, in.Channel, channelData),
			ChannelData: channelData,
		}, nil
	}

	conversationID, ok := chat.ParseConversationChannel(in.Channel)
	if !ok {
		return nil, chat.ErrNotFound
	}
	isParticipant, err := uc.Repo.IsParticipant(ctx, conversationID, in.User.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !isParticipant {
		return nil, chat.ErrNotParticipant
	}

	return &AuthorizeChannelOutput{Auth: uc.Signer.Sign(in.SocketID, in.Channel, "")}, nil
}

// Consume redeems a grant during the subscribe handshake. The first call for
// a given grant wins; replays are rejected.
func (uc *AuthorizeChannelUseCase) Consume(ctx context.Context, grant string) (bool, error) {
	if uc.Cache == nil {
		return true, nil
	}
	sum := sha256.Sum256([]byte(grant))
	key := "chat:grant:" + hex.EncodeToString(sum[:])
	ok, err := uc.Cache.SetNX(ctx, key, "1", grantTTL)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return ok, nil
}

// VerifyPresenceData parses and validates the channel data a client echoes
// back in its presence subscribe frame, returning the member identity bound
// into the grant.
func VerifyPresenceData(channelData string) (id string, name string, err error) {
	var data presenceChannelData
	if err := json.Unmarshal([]byte(channelData), &data); err != nil {
		return "", "", fmt.Errorf("decode channel data: %w", err)
	}
	if data.UserID == "" {
		return "", "", fmt.Errorf("channel data without user id")
	}
	return data.UserID, data.UserInfo.Name, nil
}
