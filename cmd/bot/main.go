package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"go.uber.org/zap"

	"max.ks1230/expense-tracker/internal/clients/tg"
	"max.ks1230/expense-tracker/internal/config"
	"max.ks1230/expense-tracker/internal/entity/currency"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/model/auth"
	"max.ks1230/expense-tracker/internal/model/messages"
	"max.ks1230/expense-tracker/internal/model/session"
	"max.ks1230/expense-tracker/internal/model/storage"
)

const serviceName = "expense-tracker-bot"

func main() {
	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config", zap.Error(err))
	}

	closeTracing, err := initTracing()
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer closeTracing()

	client, err := tg.New(conf.Telegram())
	if err != nil {
		logger.Fatal("failed to init client", zap.Error(err))
	}

	converter, err := newConverter(conf.App())
	if err != nil {
		logger.Fatal("failed to init currency converter", zap.Error(err))
	}

	expStorage, err := newStorage(conf)
	if err != nil {
		logger.Fatal("failed to init storage", zap.Error(err))
	}

	sessions, err := newSessions(conf)
	if err != nil {
		logger.Fatal("failed to init sessions", zap.Error(err))
	}

	authService := auth.New(userTable(conf.Users()))
	msgService := messages.NewService(client, expStorage, sessions, authService, converter, conf.App())

	go serveMetrics(conf.App().MetricsPort())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	client.ListenUpdates(ctx, msgService)
}

func initTracing() (func(), error) {
	cfg := jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  "const",
			Param: 1,
		},
	}
	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	return func() {
		if closeErr := closer.Close(); closeErr != nil {
			logger.Error("failed to close tracer", zap.Error(closeErr))
		}
	}, nil
}

func newConverter(appConf *config.AppConfig) (*currency.Converter, error) {
	rates := make(map[string]float64, len(appConf.Currencies()))
	for _, rate := range appConf.Currencies() {
		rates[rate.Name()] = rate.Rate()
	}
	return currency.NewConverter(appConf.BaseCurrency(), rates)
}

func newStorage(conf *config.Service) (messages.ExpenseStorage, error) {
	switch conf.Storage().Backend() {
	case config.PostgresBackend:
		return storage.NewPostgresStorage(conf.Postgres())
	case config.MemoryBackend:
		return storage.NewInMemStorage(), nil
	default:
		return storage.NewFileStorage(conf.Storage().Dir())
	}
}

func newSessions(conf *config.Service) (messages.SessionStorage, error) {
	if len(conf.Memcached().Hosts()) > 0 {
		return session.NewMemcacheSessions(conf.Memcached())
	}
	return session.NewInMemSessions(), nil
}

func userTable(usersConf *config.UsersConfig) map[string]string {
	table := make(map[string]string, len(usersConf.Users()))
	for _, entry := range usersConf.Users() {
		table[entry.Name()] = entry.Password()
	}
	return table
}

func serveMetrics(port int) {
	if port == 0 {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	logger.Info("metrics listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Error("metrics server stopped", zap.Error(err))
	}
}
