package messages

import (
	"context"
	"testing"

	"github.com/gojuno/minimock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"max.ks1230/expense-tracker/internal/model/messages/mock"
)

func Test_ParseCommand(t *testing.T) {
	tests := []struct {
		text string
		cmd  string
		arg  string
	}{
		{"/start", "/start", ""},
		{"/expense Groceries 100 INR", "/expense", "Groceries 100 INR"},
		{"  /login user pass  ", "/login", "user pass"},
		{"hello there", "", "hello there"},
		{"", "", ""},
	}
	for _, tt := range tests {
		cmd, arg := parseCommand(tt.text)
		assert.Equal(t, tt.cmd, cmd, tt.text)
		assert.Equal(t, tt.arg, arg, tt.text)
	}
}

func Test_LooksLikeDate(t *testing.T) {
	assert.True(t, looksLikeDate("05.01.2024"))
	assert.True(t, looksLikeDate("5.1.24"))
	assert.False(t, looksLikeDate("new shoes"))
	assert.False(t, looksLikeDate("05.01"))
	assert.False(t, looksLikeDate("a.b.c"))
}

func Test_OnEdit_ShouldReplaceRecordInPlace(t *testing.T) {
	m := minimock.NewController(t)
	defer m.Finish()
	sender := mock.NewMessageSenderMock(m)

	var last string
	sender.SendMessageMock.Set(func(text string, chatID int64) error {
		last = text
		return nil
	})

	model, _ := newTestService(t, sender)
	ctx := context.Background()

	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/login snegab sbtrack789", ChatID: 123}))
	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/expense Groceries 100 INR 05.01.2024", ChatID: 123}))
	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/expense Transport 50 INR 06.01.2024", ChatID: 123}))

	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/edit 1 Shopping 200 INR 07.01.2024 gift", ChatID: 123}))
	assert.Equal(t, "Updated #1", last)

	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/list", ChatID: 123}))
	assert.Contains(t, last, "1. #1 2024-01-07 Shopping 200.00 gift")
	assert.Contains(t, last, "2. #2 2024-01-06 Transport 50.00")

	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/edit 9 Shopping 200 INR", ChatID: 123}))
	assert.Equal(t, "There is no expense #9", last)
}

func Test_OnBadDate_ShouldComplainAboutFormat(t *testing.T) {
	m := minimock.NewController(t)
	defer m.Finish()
	sender := mock.NewMessageSenderMock(m)

	var last string
	sender.SendMessageMock.Set(func(text string, chatID int64) error {
		last = text
		return nil
	})

	model, _ := newTestService(t, sender)
	ctx := context.Background()

	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/login snegab sbtrack789", ChatID: 123}))
	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/expense Groceries 100 INR 99.99.2024", ChatID: 123}))
	assert.Equal(t, incorrectDateMessage, last)
}
