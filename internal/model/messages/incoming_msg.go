package messages

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"max.ks1230/expense-tracker/internal/entity/currency"
)

type messageSender interface {
	SendMessage(text string, chatID int64) error
}

type MessageHandler interface {
	HandleMessage(ctx context.Context, text string, chatID int64) (string, error)
}

type Service struct {
	tgClient messageSender
	handler  MessageHandler
}

func NewService(
	tgClient messageSender,
	storage ExpenseStorage,
	sessions SessionStorage,
	auth authChecker,
	converter *currency.Converter,
	config config,
) *Service {
	return &Service{
		tgClient: tgClient,
		handler:  newHandler(storage, sessions, auth, converter, config),
	}
}

type Message struct {
	Text   string
	ChatID int64
}

func (s *Service) HandleIncomingMessage(ctx context.Context, msg Message) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "handleMessage")
	defer span.Finish()

	start := time.Now()
	err := s.handle(ctx, msg)
	elapsed := time.Since(start)

	observeResponse(elapsed, err != nil)
	if err != nil {
		ext.Error.Set(span, true)
	}
	return err
}

func (s *Service) handle(ctx context.Context, msg Message) error {
	resp, err := s.handler.HandleMessage(ctx, msg.Text, msg.ChatID)
	if err != nil {
		_ = s.tgClient.SendMessage("Sorry, something wrong happened...\n"+resp, msg.ChatID)
		return err
	}
	return s.tgClient.SendMessage(resp, msg.ChatID)
}
