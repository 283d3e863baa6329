package messages

import (
	"context"
	"testing"

	"github.com/gojuno/minimock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"max.ks1230/expense-tracker/internal/entity/currency"
	"max.ks1230/expense-tracker/internal/model/auth"
	"max.ks1230/expense-tracker/internal/model/messages/mock"
	"max.ks1230/expense-tracker/internal/model/session"
	"max.ks1230/expense-tracker/internal/model/storage"
)

type testConfig struct{}

func (testConfig) Categories() []string {
	return []string{"Groceries", "Transport", "Shopping"}
}

func newTestService(t *testing.T, sender messageSender) (*Service, SessionStorage) {
	t.Helper()

	converter, err := currency.NewConverter(currency.INR, map[string]float64{
		currency.INR: 1.0,
		currency.USD: 83.0,
		currency.EUR: 90.0,
		currency.GBP: 104.0,
	})
	require.NoError(t, err)

	sessions := session.NewInMemSessions()
	authService := auth.New(map[string]string{"snegab": "sbtrack789"})
	svc := NewService(sender, storage.NewInMemStorage(), sessions, authService, converter, testConfig{})
	return svc, sessions
}

func Test_OnStartCommand_ShouldAnswerWithIntroMessage(t *testing.T) {
	m := minimock.NewController(t)
	defer m.Finish()
	sender := mock.NewMessageSenderMock(m)

	sender.SendMessageMock.
		Expect(helloMessage, int64(123)).
		Return(nil)

	model, _ := newTestService(t, sender)
	err := model.HandleIncomingMessage(context.Background(), Message{
		Text:   "/start",
		ChatID: 123,
	})

	assert.NoError(t, err)
}

func Test_OnUnknownCommand_ShouldAnswerWithHelpMessage(t *testing.T) {
	m := minimock.NewController(t)
	defer m.Finish()
	sender := mock.NewMessageSenderMock(m)

	sender.SendMessageMock.
		Expect(dontUnderstandMessage, int64(123)).
		Return(nil)

	model, _ := newTestService(t, sender)
	err := model.HandleIncomingMessage(context.Background(), Message{
		Text:   "/none",
		ChatID: 123,
	})

	assert.NoError(t, err)
}

func Test_OnExpenseWithoutLogin_ShouldAskToLogIn(t *testing.T) {
	m := minimock.NewController(t)
	defer m.Finish()
	sender := mock.NewMessageSenderMock(m)

	sender.SendMessageMock.
		Expect(notLoggedInMessage, int64(123)).
		Return(nil)

	model, _ := newTestService(t, sender)
	err := model.HandleIncomingMessage(context.Background(), Message{
		Text:   "/expense Groceries 100 INR",
		ChatID: 123,
	})

	assert.NoError(t, err)
}

func Test_OnBadCredentials_ShouldRejectLogin(t *testing.T) {
	m := minimock.NewController(t)
	defer m.Finish()
	sender := mock.NewMessageSenderMock(m)

	sender.SendMessageMock.
		Expect(badCredsMessage, int64(123)).
		Return(nil)

	model, _ := newTestService(t, sender)
	err := model.HandleIncomingMessage(context.Background(), Message{
		Text:   "/login snegab wrong",
		ChatID: 123,
	})

	assert.NoError(t, err)
}

func Test_OnLogin_ShouldGreetAndCreateSession(t *testing.T) {
	m := minimock.NewController(t)
	defer m.Finish()
	sender := mock.NewMessageSenderMock(m)

	sender.SendMessageMock.
		Expect("Welcome, snegab 👋", int64(123)).
		Return(nil)

	model, sessions := newTestService(t, sender)
	err := model.HandleIncomingMessage(context.Background(), Message{
		Text:   "/login snegab sbtrack789",
		ChatID: 123,
	})

	assert.NoError(t, err)
	sess, err := sessions.Get(123)
	assert.NoError(t, err)
	assert.True(t, sess.LoggedIn())
	assert.Equal(t, "snegab", sess.User)
}

func Test_OnExpense_ShouldConvertAndConfirm(t *testing.T) {
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
	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/expense Shopping 2 USD 05.01.2024 new shoes", ChatID: 123}))

	// 2 USD at the static 83.0 rate
	assert.Equal(t, "Expense added and converted to INR 166.00", last)

	calls := sender.SendMessageMock.Calls()
	require.Len(t, calls, 2)
}

func Test_OnNonFiniteAmounts_ShouldRejectInput(t *testing.T) {
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

	for _, bad := range []string{"NaN", "Inf", "-Inf", "+Inf"} {
		require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/expense Groceries " + bad + " INR", ChatID: 123}))
		assert.Equal(t, incorrectExpenseMessage, last, bad)

		require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/income " + bad, ChatID: 123}))
		assert.Equal(t, incorrectIncomeMessage, last, bad)
	}

	// nothing was stored, averages stay clean
	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/expense Groceries 100 INR 05.01.2024", ChatID: 123}))
	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/avg", ChatID: 123}))
	assert.Equal(t, "Average spend per transaction: 100.00", last)
}

func Test_OnDuplicateExpense_ShouldWarnAndSkip(t *testing.T) {
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
	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/expense Groceries 500 INR 05.01.2024", ChatID: 123}))
	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/expense Groceries 500 INR 05.01.2024", ChatID: 123}))
	assert.Equal(t, duplicateMessage, last)

	// a different description is a different expense
	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/expense Groceries 500 INR 05.01.2024 veggies", ChatID: 123}))
	assert.NotEqual(t, duplicateMessage, last)
}

func Test_OnDeleteWithoutConfirm_ShouldNotMutate(t *testing.T) {
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
	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/expense Groceries 500 INR 05.01.2024", ChatID: 123}))

	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/delete 1", ChatID: 123}))
	assert.Contains(t, last, "About to delete #1")

	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/list", ChatID: 123}))
	assert.Contains(t, last, "#1")

	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/delete 1 confirm", ChatID: 123}))
	assert.Equal(t, "Deleted #1", last)

	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/list", ChatID: 123}))
	assert.Equal(t, noExpensesMessage, last)
}

func Test_OnRatioWithoutIncome_ShouldAskForIncome(t *testing.T) {
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
	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/expense Groceries 500 INR 05.01.2024", ChatID: 123}))

	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/ratio 2024-01", ChatID: 123}))
	assert.Equal(t, incomeRequiredMessage, last)

	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/income 1000", ChatID: 123}))
	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/ratio 2024-01", ChatID: 123}))
	assert.Contains(t, last, "Groceries: 500.00 (50.0% of income)")
}

func Test_OnUnknownCurrency_ShouldListKnownOnes(t *testing.T) {
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
	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/expense Groceries 500 JPY", ChatID: 123}))
	assert.Contains(t, last, "I don't know that currency")

	require.NoError(t, model.HandleIncomingMessage(ctx, Message{Text: "/expense Gadgets 500 INR", ChatID: 123}))
	assert.Contains(t, last, "I don't know that category")
}
