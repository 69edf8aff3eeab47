package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "minglemart/internal/pkg/chat/application/domain"
)

type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

func (r *PgChatRepository) CreateConversation(ctx context.Context, c chat.Conversation) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgChatRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx,
		"INSERT INTO chat.conversation (created_at, is_group, name) VALUES ($1, $2, $3) RETURNING id::text",
		c.CreatedAt, c.IsGroup, c.Name,
	).Scan(&id)
	return id, err
}

func (r *PgChatRepository) AddParticipant(ctx context.Context, p chat.Participant) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat.participant (conversation_id, user_id, role)
		VALUES ($1::uuid, $2::uuid, $3)
		ON CONFLICT (conversation_id, user_id)
		DO UPDATE SET role = EXCLUDED.role
	`, p.ConversationID, p.UserID, p.Role)
	return err
}

func (r *PgChatRepository) IsParticipant(ctx context.Context, conversationID string, userID string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgChatRepository: nil pool")
	}
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM chat.participant
			WHERE conversation_id = $1::uuid AND user_id = $2::uuid
		)
	`, conversationID, userID).Scan(&exists)
	return exists, err
}

func (r *PgChatRepository) ListParticipantIDs(ctx context.Context, conversationID string) ([]string, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT user_id::text FROM chat.participant
		WHERE conversation_id = $1::uuid
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PgChatRepository) ConversationExists(ctx context.Context, conversationID string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgChatRepository: nil pool")
	}
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM chat.conversation WHERE id = $1::uuid)",
		conversationID,
	).Scan(&exists)
	return exists, err
}

func (r *PgChatRepository) SaveMessage(ctx context.Context, m chat.Message) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgChatRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat.message (conversation_id, sender_id, created_at, content)
		VALUES ($1::uuid, $2::uuid, $3, $4)
		RETURNING id::text
	`, m.ConversationID, m.SenderID, m.CreatedAt, m.Content).Scan(&id)
	return id, err
}

func (r *PgChatRepository) GetMessagesByConversation(ctx context.Context, conversationID string, limit int, offset int) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT m.id::text, m.conversation_id::text, m.sender_id::text, m.created_at, m.content,
		       u.name, COALESCE(u.avatar_url, '')
		FROM chat.message m
		JOIN users u ON u.id = m.sender_id
		WHERE m.conversation_id = $1::uuid
		ORDER BY m.created_at DESC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	index := make(map[string]int)
	for rows.Next() {
		var msg chat.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.CreatedAt, &msg.Content, &msg.SenderName, &msg.SenderImage); err != nil {
			return nil, err
		}
		index[msg.ID] = len(msgs)
		msgs = append(msgs, msg)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	if len(msgs) == 0 {
		return msgs, nil
	}

	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	reactions, err := r.listReactions(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, reaction := range reactions {
		if i, ok := index[reaction.MessageID]; ok {
			msgs[i].Reactions = append(msgs[i].Reactions, reaction)
		}
	}
	return msgs, nil
}

func (r *PgChatRepository) GetMessage(ctx context.Context, messageID string) (*chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	var msg chat.Message
	err := r.pool.QueryRow(ctx, `
		SELECT m.id::text, m.conversation_id::text, m.sender_id::text, m.created_at, m.content,
		       u.name, COALESCE(u.avatar_url, '')
		FROM chat.message m
		JOIN users u ON u.id = m.sender_id
		WHERE m.id = $1::uuid
	`, messageID).Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.CreatedAt, &msg.Content, &msg.SenderName, &msg.SenderImage)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, chat.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *PgChatRepository) TouchConversation(ctx context.Context, conversationID string, at time.Time) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE chat.conversation
		SET last_message_at = $2
		WHERE id = $1::uuid
	`, conversationID, at)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return chat.ErrNotFound
	}
	return nil
}

// ToggleReaction deletes the (message, user, emoji) row when it exists and
// inserts it otherwise. The unique constraint on the tuple resolves the race
// of two identical toggles landing together: the loser of the insert hits
// the conflict and the row count stays at one.
func (r *PgChatRepository) ToggleReaction(ctx context.Context, reaction chat.Reaction) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgChatRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		DELETE FROM chat.message_reaction
		WHERE message_id = $1::uuid AND user_id = $2::uuid AND emoji = $3
	`, reaction.MessageID, reaction.UserID, reaction.Emoji)
	if err != nil {
		return false, err
	}
	if ct.RowsAffected() > 0 {
		return false, nil
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO chat.message_reaction (message_id, user_id, emoji)
		VALUES ($1::uuid, $2::uuid, $3)
		ON CONFLICT (message_id, user_id, emoji) DO NOTHING
	`, reaction.MessageID, reaction.UserID, reaction.Emoji)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PgChatRepository) ListReactionsForMessage(ctx context.Context, messageID string) ([]chat.Reaction, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	return r.listReactions(ctx, []string{messageID})
}

func (r *PgChatRepository) GetUser(ctx context.Context, userID string) (*chat.User, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	var u chat.User
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name, COALESCE(avatar_url, '')
		FROM users
		WHERE id = $1::uuid
	`, userID).Scan(&u.ID, &u.DisplayName, &u.AvatarURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, chat.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PgChatRepository) SaveNotification(ctx context.Context, userID string, conversationID string, messageID string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat.notification (user_id, conversation_id, message_id, created_at)
		VALUES ($1::uuid, $2::uuid, $3::uuid, now())
		ON CONFLICT (user_id, message_id) DO NOTHING
	`, userID, conversationID, messageID)
	return err
}

func (r *PgChatRepository) listReactions(ctx context.Context, messageIDs []string) ([]chat.Reaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT mr.message_id::text, mr.user_id::text, mr.emoji, u.id::text, u.name
		FROM chat.message_reaction mr
		JOIN users u ON u.id = mr.user_id
		WHERE mr.message_id = ANY($1::uuid[])
		ORDER BY mr.created_at ASC
	`, messageIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reactions []chat.Reaction
	for rows.Next() {
		var reaction chat.Reaction
		if err := rows.Scan(&reaction.MessageID, &reaction.UserID, &reaction.Emoji, &reaction.User.ID, &reaction.User.Name); err != nil {
			return nil, err
		}
		reactions = append(reactions, reaction)
	}
	return reactions, rows.Err()
}
