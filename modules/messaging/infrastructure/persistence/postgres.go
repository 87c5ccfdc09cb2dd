// Package persistence stores chat threads and messages.
package persistence

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/messaging/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

const (
	threadsTable  = "chat_threads"
	messagesTable = "chat_messages"
)

var threadColumns = []string{
	"id", "client_id", "trainer_id", "trainer_user_id", "is_priority", "last_message_at", "created_at",
}

type threadRow struct {
	ID            types.ThreadID  `db:"id"`
	ClientID      types.UserID    `db:"client_id"`
	TrainerID     types.TrainerID `db:"trainer_id"`
	TrainerUserID types.UserID    `db:"trainer_user_id"`
	IsPriority    bool            `db:"is_priority"`
	LastMessageAt *time.Time      `db:"last_message_at"`
	CreatedAt     time.Time       `db:"created_at"`
}

func (r threadRow) toDomain() *domain.Thread {
	return domain.ReconstituteThread(domain.ThreadState(r))
}

var messageColumns = []string{
	"id", "thread_id", "sender_id", "recipient_id", "type", "content", "media_url", "is_read", "read_at", "created_at",
}

type messageRow struct {
	ID          types.MessageID `db:"id"`
	ThreadID    types.ThreadID  `db:"thread_id"`
	SenderID    types.UserID    `db:"sender_id"`
	RecipientID types.UserID    `db:"recipient_id"`
	Type        string          `db:"type"`
	Content     string          `db:"content"`
	MediaURL    string          `db:"media_url"`
	IsRead      bool            `db:"is_read"`
	ReadAt      *time.Time      `db:"read_at"`
	CreatedAt   time.Time       `db:"created_at"`
}

func (r messageRow) toDomain() *domain.Message {
	kind, err := domain.ParseMessageType(r.Type)
	if err != nil {
		kind = domain.MessageText
	}
	return domain.ReconstituteMessage(domain.MessageState{
		ID:          r.ID,
		ThreadID:    r.ThreadID,
		SenderID:    r.SenderID,
		RecipientID: r.RecipientID,
		Type:        kind,
		Content:     r.Content,
		MediaURL:    r.MediaURL,
		IsRead:      r.IsRead,
		ReadAt:      r.ReadAt,
		CreatedAt:   r.CreatedAt,
	})
}

// PostgresThreadRepository implements ThreadRepository on PostgreSQL.
// Messages are removed with their thread by the foreign key cascade.
type PostgresThreadRepository struct {
	db *postgres.DB
}

func NewPostgresThreadRepository(db *postgres.DB) *PostgresThreadRepository {
	return &PostgresThreadRepository{db: db}
}

var _ domain.ThreadRepository = (*PostgresThreadRepository)(nil)

func (r *PostgresThreadRepository) Save(ctx context.Context, t *domain.Thread) error {
	s := t.State()
	q := postgres.Builder().
		Insert(threadsTable).
		Columns(threadColumns...).
		Values(s.ID, s.ClientID, s.TrainerID, s.TrainerUserID, s.IsPriority, s.LastMessageAt, s.CreatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			is_priority = EXCLUDED.is_priority,
			last_message_at = EXCLUDED.last_message_at`)
	if _, err := r.db.Exec(ctx, q); err != nil {
		return fmt.Errorf("saving thread: %w", err)
	}
	return nil
}

func (r *PostgresThreadRepository) findOne(ctx context.Context, where sq.Eq) (*domain.Thread, error) {
	q := postgres.Builder().Select(threadColumns...).From(threadsTable).Where(where).Limit(1)
	var row threadRow
	if err := r.db.Get(ctx, &row, q); err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrThreadNotFound
		}
		return nil, fmt.Errorf("finding thread: %w", err)
	}
	return row.toDomain(), nil
}

func (r *PostgresThreadRepository) FindByID(ctx context.Context, id types.ThreadID) (*domain.Thread, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

func (r *PostgresThreadRepository) FindByPair(ctx context.Context, clientID types.UserID, trainerID types.TrainerID) (*domain.Thread, error) {
	return r.findOne(ctx, sq.Eq{"client_id": clientID, "trainer_id": trainerID})
}

func participant(userID types.UserID) sq.Or {
	return sq.Or{sq.Eq{"client_id": userID}, sq.Eq{"trainer_user_id": userID}}
}

func (r *PostgresThreadRepository) ListForUser(ctx context.Context, userID types.UserID, page types.Page) ([]domain.ChatSummary, int, error) {
	total, err := r.db.Count(ctx, postgres.Builder().Select("COUNT(*)").From(threadsTable).Where(participant(userID)))
	if err != nil {
		return nil, 0, fmt.Errorf("counting threads: %w", err)
	}
	q := postgres.Builder().Select(threadColumns...).From(threadsTable).
		Where(participant(userID)).
		OrderBy("is_priority DESC", "COALESCE(last_message_at, created_at) DESC").
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset()))
	var rows []threadRow
	if err := r.db.Select(ctx, &rows, q); err != nil {
		return nil, 0, fmt.Errorf("listing threads: %w", err)
	}
	if len(rows) == 0 {
		return []domain.ChatSummary{}, total, nil
	}
	ids := make([]types.ThreadID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	var last []messageRow
	lq := postgres.Builder().Select(messageColumns...).Options("DISTINCT ON (thread_id)").From(messagesTable).
		Where(sq.Eq{"thread_id": ids}).
		OrderBy("thread_id", "created_at DESC")
	if err := r.db.Select(ctx, &last, lq); err != nil {
		return nil, 0, fmt.Errorf("loading last messages: %w", err)
	}
	lastByThread := make(map[types.ThreadID]*domain.Message, len(last))
	for _, m := range last {
		lastByThread[m.ThreadID] = m.toDomain()
	}

	var unread []struct {
		ThreadID types.ThreadID `db:"thread_id"`
		Count    int            `db:"unread"`
	}
	uq := postgres.Builder().Select("thread_id", "COUNT(*) AS unread").From(messagesTable).
		Where(sq.Eq{"thread_id": ids, "recipient_id": userID, "is_read": false}).
		GroupBy("thread_id")
	if err := r.db.Select(ctx, &unread, uq); err != nil {
		return nil, 0, fmt.Errorf("counting unread messages: %w", err)
	}
	unreadByThread := make(map[types.ThreadID]int, len(unread))
	for _, u := range unread {
		unreadByThread[u.ThreadID] = u.Count
	}

	out := make([]domain.ChatSummary, len(rows))
	for i, row := range rows {
		out[i] = domain.ChatSummary{
			Thread:      row.toDomain(),
			LastMessage: lastByThread[row.ID],
			UnreadCount: unreadByThread[row.ID],
		}
	}
	return out, total, nil
}

func (r *PostgresThreadRepository) Delete(ctx context.Context, id types.ThreadID) error {
	n, err := r.db.Exec(ctx, postgres.Builder().Delete(threadsTable).Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("deleting thread: %w", err)
	}
	if n == 0 {
		return domain.ErrThreadNotFound
	}
	return nil
}

func (r *PostgresThreadRepository) DeleteForUser(ctx context.Context, userID types.UserID) (int, error) {
	n, err := r.db.Exec(ctx, postgres.Builder().Delete(threadsTable).Where(participant(userID)))
	if err != nil {
		return 0, fmt.Errorf("deleting threads: %w", err)
	}
	return int(n), nil
}

// PostgresMessageRepository implements MessageRepository on PostgreSQL.
type PostgresMessageRepository struct {
	db *postgres.DB
}

func NewPostgresMessageRepository(db *postgres.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

var _ domain.MessageRepository = (*PostgresMessageRepository)(nil)

func (r *PostgresMessageRepository) Save(ctx context.Context, m *domain.Message) error {
	s := m.State()
	q := postgres.Builder().
		Insert(messagesTable).
		Columns(messageColumns...).
		Values(s.ID, s.ThreadID, s.SenderID, s.RecipientID, s.Type.String(), s.Content, s.MediaURL, s.IsRead, s.ReadAt, s.CreatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			is_read = EXCLUDED.is_read,
			read_at = EXCLUDED.read_at`)
	if _, err := r.db.Exec(ctx, q); err != nil {
		return fmt.Errorf("saving message: %w", err)
	}
	return nil
}

func (r *PostgresMessageRepository) FindByID(ctx context.Context, id types.MessageID) (*domain.Message, error) {
	q := postgres.Builder().Select(messageColumns...).From(messagesTable).Where(sq.Eq{"id": id}).Limit(1)
	var row messageRow
	if err := r.db.Get(ctx, &row, q); err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("finding message: %w", err)
	}
	return row.toDomain(), nil
}

func (r *PostgresMessageRepository) ListByThread(ctx context.Context, threadID types.ThreadID, page types.Page) ([]*domain.Message, int, error) {
	where := sq.Eq{"thread_id": threadID}
	total, err := r.db.Count(ctx, postgres.Builder().Select("COUNT(*)").From(messagesTable).Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("counting messages: %w", err)
	}
	q := postgres.Builder().Select(messageColumns...).From(messagesTable).
		Where(where).
		OrderBy("created_at DESC").
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset()))
	var rows []messageRow
	if err := r.db.Select(ctx, &rows, q); err != nil {
		return nil, 0, fmt.Errorf("listing messages: %w", err)
	}
	out := make([]*domain.Message, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, total, nil
}

func (r *PostgresMessageRepository) MarkThreadRead(ctx context.Context, threadID types.ThreadID, reader types.UserID, at time.Time) (int, error) {
	q := postgres.Builder().Update(messagesTable).
		Set("is_read", true).
		Set("read_at", at).
		Where(sq.Eq{"thread_id": threadID, "recipient_id": reader, "is_read": false})
	n, err := r.db.Exec(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("marking thread read: %w", err)
	}
	return int(n), nil
}

func (r *PostgresMessageRepository) UnreadCount(ctx context.Context, userID types.UserID) (int, error) {
	n, err := r.db.Count(ctx, postgres.Builder().Select("COUNT(*)").From(messagesTable).
		Where(sq.Eq{"recipient_id": userID, "is_read": false}))
	if err != nil {
		return 0, fmt.Errorf("counting unread messages: %w", err)
	}
	return n, nil
}
