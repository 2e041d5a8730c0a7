package store

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/smartstore/backend/internal/apperr"
	"github.com/smartstore/backend/internal/models"
	"github.com/smartstore/backend/pkg/db"
)

func newConvStore(t *testing.T) *Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	require.NoError(t, gdb.Create(&models.User{
		Username: "alice", Email: "alice@example.com", PasswordHash: "x",
	}).Error)
	return New(gdb)
}

func TestConversationMessages(t *testing.T) {
	st := newConvStore(t)

	conv, err := st.CreateConversation(t.Context(), 1, "session-1")
	require.NoError(t, err)
	require.NotZero(t, conv.ID)

	_, err = st.AddMessage(t.Context(), conv.ID, models.SenderUser, "find me a lamp")
	require.NoError(t, err)
	_, err = st.AddMessage(t.Context(), conv.ID, models.SenderBot, "here is one")
	require.NoError(t, err)

	msgs, err := st.GetMessages(t.Context(), conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, models.SenderUser, msgs[0].Sender)
	require.Equal(t, models.SenderBot, msgs[1].Sender)
}

func TestAddMessageRejectsUnknownSender(t *testing.T) {
	st := newConvStore(t)

	conv, err := st.CreateConversation(t.Context(), 1, "session-1")
	require.NoError(t, err)

	_, err = st.AddMessage(t.Context(), conv.ID, "system", "nope")
	require.True(t, apperr.Is(err, apperr.KindValidation))
}
