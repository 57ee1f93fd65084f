package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"donation-agent/handler"
	"donation-agent/internal/integrations/paramstore"
	"donation-agent/internal/integrations/places"
	"donation-agent/internal/repository"
	"donation-agent/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	ledgerTable := mustEnv("LEDGER_TABLE")
	paramPrefix := mustEnv("PARAM_PREFIX")
	maxMessageLen := envInt("MAX_MESSAGE_LENGTH", 500)

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	ledger, err := repository.NewLedger(awsdynamodb.NewFromConfig(cfg), ledgerTable)
	if err != nil {
		slog.Error("failed to create ledger", "err", err)
		os.Exit(1)
	}
	finder, err := places.NewClient(
		places.WithKeyParameter(ssmClient, paramstore.JoinName(paramPrefix, "google-maps-key")),
	)
	if err != nil {
		slog.Error("failed to create places client", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	svc, err := usecase.NewChatService(finder, ledger, usecase.WithMaxMessageLength(maxMessageLen))
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(svc)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
