package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/parley/internal/common"
	"github.com/ternarybob/parley/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	config := &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "parley-test"),
	}

	manager, err := NewManager(arbor.NewLogger(), config)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	return manager
}

func TestDocumentStorage_SaveAndGet(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	doc := &models.Document{
		ID:         "doc_test1",
		Title:      "Test Document",
		Filename:   "test.pdf",
		Content:    "extracted text",
		Size:       1024,
		PageCount:  3,
		Extracted:  true,
		UploadedAt: time.Now(),
	}

	require.NoError(t, manager.DocumentStorage().SaveDocument(ctx, doc))

	got, err := manager.DocumentStorage().GetDocument(ctx, "doc_test1")
	require.NoError(t, err)
	assert.Equal(t, "Test Document", got.Title)
	assert.Equal(t, 3, got.PageCount)
	assert.True(t, got.Extracted)
}

func TestDocumentStorage_GetMissing(t *testing.T) {
	manager := newTestManager(t)

	_, err := manager.DocumentStorage().GetDocument(context.Background(), "doc_missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDocumentStorage_ListNewestFirst(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	base := time.Now()
	for i, id := range []string{"doc_a", "doc_b", "doc_c"} {
		doc := &models.Document{
			ID:         id,
			Title:      id,
			UploadedAt: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, manager.DocumentStorage().SaveDocument(ctx, doc))
	}

	docs, err := manager.DocumentStorage().ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "doc_c", docs[0].ID)
	assert.Equal(t, "doc_a", docs[2].ID)
}

func TestSessionStorage_GetByDocument(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	base := time.Now()
	second := &models.ChatSession{ID: "chat_2", DocumentID: "doc_1", CreatedAt: base.Add(time.Second)}
	first := &models.ChatSession{ID: "chat_1", DocumentID: "doc_1", CreatedAt: base}
	other := &models.ChatSession{ID: "chat_3", DocumentID: "doc_2", CreatedAt: base}

	require.NoError(t, manager.SessionStorage().SaveSession(ctx, second))
	require.NoError(t, manager.SessionStorage().SaveSession(ctx, first))
	require.NoError(t, manager.SessionStorage().SaveSession(ctx, other))

	got, err := manager.SessionStorage().GetSessionByDocument(ctx, "doc_1")
	require.NoError(t, err)
	assert.Equal(t, "chat_1", got.ID)

	_, err = manager.SessionStorage().GetSessionByDocument(ctx, "doc_none")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMessageStorage_OrderAndSequencePersistence(t *testing.T) {
	config := &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "parley-test"),
	}
	ctx := context.Background()

	manager, err := NewManager(arbor.NewLogger(), config)
	require.NoError(t, err)

	// Same timestamp on purpose, sequence must break the tie
	ts := time.Now()
	for _, id := range []string{"msg_1", "msg_2", "msg_3"} {
		msg := &models.Message{ID: id, SessionID: "chat_1", Content: id, Timestamp: ts}
		require.NoError(t, manager.MessageStorage().SaveMessage(ctx, msg))
	}

	require.NoError(t, manager.Close())

	// Reopen, the counter must resume past existing messages
	manager, err = NewManager(arbor.NewLogger(), config)
	require.NoError(t, err)
	defer manager.Close()

	msg := &models.Message{ID: "msg_4", SessionID: "chat_1", Content: "msg_4", Timestamp: ts}
	require.NoError(t, manager.MessageStorage().SaveMessage(ctx, msg))

	msgs, err := manager.MessageStorage().ListMessagesBySession(ctx, "chat_1")
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	for i, want := range []string{"msg_1", "msg_2", "msg_3", "msg_4"} {
		assert.Equal(t, want, msgs[i].ID)
	}
}

func TestMessageStorage_DeleteBySession(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	for _, id := range []string{"msg_1", "msg_2"} {
		msg := &models.Message{ID: id, SessionID: "chat_1", Timestamp: time.Now()}
		require.NoError(t, manager.MessageStorage().SaveMessage(ctx, msg))
	}
	other := &models.Message{ID: "msg_3", SessionID: "chat_2", Timestamp: time.Now()}
	require.NoError(t, manager.MessageStorage().SaveMessage(ctx, other))

	require.NoError(t, manager.MessageStorage().DeleteMessagesBySession(ctx, "chat_1"))

	count, err := manager.MessageStorage().CountMessagesBySession(ctx, "chat_1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = manager.MessageStorage().CountMessagesBySession(ctx, "chat_2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestKVStorage_SetGetDelete(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	kv := manager.KeyValueStorage()

	require.NoError(t, kv.Set(ctx, "gemini_api_key", "secret", "test key"))

	value, err := kv.Get(ctx, "gemini_api_key")
	require.NoError(t, err)
	assert.Equal(t, "secret", value)

	require.NoError(t, kv.Delete(ctx, "gemini_api_key"))

	_, err = kv.Get(ctx, "gemini_api_key")
	assert.Error(t, err)
}

func TestManager_MaintainRemovesOrphans(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	doc := &models.Document{ID: "doc_1", Title: "kept", UploadedAt: time.Now()}
	require.NoError(t, manager.DocumentStorage().SaveDocument(ctx, doc))

	kept := &models.ChatSession{ID: "chat_1", DocumentID: "doc_1", CreatedAt: time.Now()}
	orphan := &models.ChatSession{ID: "chat_2", DocumentID: "doc_gone", CreatedAt: time.Now()}
	require.NoError(t, manager.SessionStorage().SaveSession(ctx, kept))
	require.NoError(t, manager.SessionStorage().SaveSession(ctx, orphan))

	orphanMsg := &models.Message{ID: "msg_1", SessionID: "chat_2", Timestamp: time.Now()}
	keptMsg := &models.Message{ID: "msg_2", SessionID: "chat_1", Timestamp: time.Now()}
	require.NoError(t, manager.MessageStorage().SaveMessage(ctx, orphanMsg))
	require.NoError(t, manager.MessageStorage().SaveMessage(ctx, keptMsg))

	require.NoError(t, manager.Maintain(ctx))

	_, err := manager.SessionStorage().GetSession(ctx, "chat_2")
	assert.ErrorIs(t, err, common.ErrNotFound)

	count, err := manager.MessageStorage().CountMessagesBySession(ctx, "chat_2")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = manager.SessionStorage().GetSession(ctx, "chat_1")
	assert.NoError(t, err)
}
