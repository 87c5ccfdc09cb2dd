package persistence_test

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlagappanMk24/Gymunity/internal/platform/postgres"
	"github.com/AlagappanMk24/Gymunity/modules/messaging/domain"
	"github.com/AlagappanMk24/Gymunity/modules/messaging/infrastructure/persistence"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func newMockDB(t *testing.T) (*postgres.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return postgres.NewDB(sqlx.NewDb(raw, "postgres")), mock
}

var (
	threadRowColumns  = []string{"id", "client_id", "trainer_id", "trainer_user_id", "is_priority", "last_message_at", "created_at"}
	messageRowColumns = []string{"id", "thread_id", "sender_id", "recipient_id", "type", "content", "media_url", "is_read", "read_at", "created_at"}
)

func TestPostgresThreadRepository_ListForUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresThreadRepository(db)
	userID := types.NewUserID()
	trainerUserID := types.NewUserID()
	threadID := types.NewID[types.ThreadKind]()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM chat_threads WHERE \(client_id = \$1 OR trainer_user_id = \$2\)`).
		WithArgs(userID.String(), userID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT (.+) FROM chat_threads WHERE \(client_id = \$1 OR trainer_user_id = \$2\) ORDER BY is_priority DESC, COALESCE\(last_message_at, created_at\) DESC LIMIT 20 OFFSET 0`).
		WillReturnRows(sqlmock.NewRows(threadRowColumns).AddRow(
			threadID.String(), userID.String(), types.NewID[types.TrainerKind]().String(), trainerUserID.String(), true, now, now,
		))
	mock.ExpectQuery(`SELECT DISTINCT ON \(thread_id\) (.+) FROM chat_messages WHERE thread_id IN \(\$1\) ORDER BY thread_id, created_at DESC`).
		WithArgs(threadID.String()).
		WillReturnRows(sqlmock.NewRows(messageRowColumns).AddRow(
			types.NewID[types.MessageKind]().String(), threadID.String(), trainerUserID.String(), userID.String(),
			"Text", "See you Monday", "", false, nil, now,
		))
	mock.ExpectQuery(`SELECT thread_id, COUNT\(\*\) AS unread FROM chat_messages WHERE is_read = \$1 AND recipient_id = \$2 AND thread_id IN \(\$3\) GROUP BY thread_id`).
		WithArgs(false, userID.String(), threadID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"thread_id", "unread"}).AddRow(threadID.String(), 3))

	chats, total, err := repo.ListForUser(context.Background(), userID, types.NewPage(1, 20))

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, chats, 1)
	assert.True(t, chats[0].Thread.IsPriority())
	assert.Equal(t, 3, chats[0].UnreadCount)
	require.NotNil(t, chats[0].LastMessage)
	assert.Equal(t, "See you Monday", chats[0].LastMessage.Content())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresThreadRepository_DeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresThreadRepository(db)
	mock.ExpectExec(`DELETE FROM chat_threads WHERE id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), types.NewID[types.ThreadKind]())

	assert.ErrorIs(t, err, domain.ErrThreadNotFound)
}

func TestPostgresMessageRepository_MarkThreadRead(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresMessageRepository(db)
	threadID := types.NewID[types.ThreadKind]()
	reader := types.NewUserID()
	at := time.Now().UTC()

	mock.ExpectExec(`UPDATE chat_messages SET is_read = \$1, read_at = \$2 WHERE is_read = \$3 AND recipient_id = \$4 AND thread_id = \$5`).
		WithArgs(true, at, false, reader.String(), threadID.String()).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.MarkThreadRead(context.Background(), threadID, reader, at)

	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMessageRepository_FindByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewPostgresMessageRepository(db)
	mock.ExpectQuery(`SELECT (.+) FROM chat_messages WHERE id = \$1 LIMIT 1`).
		WillReturnRows(sqlmock.NewRows(messageRowColumns))

	_, err := repo.FindByID(context.Background(), types.NewID[types.MessageKind]())

	assert.ErrorIs(t, err, domain.ErrMessageNotFound)
}
