package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"donation-agent/internal/integrations/places"
	"donation-agent/internal/integrations/sheets"
	"donation-agent/internal/usecase"
)

var exitCommands = []string{"quit", "exit", "bye"}

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	// Missing credentials are warnings, not exits: the conversation still
	// runs and the affected capability fails when it is actually used.
	apiKey := os.Getenv("GOOGLE_API_KEY")
	sheetID := os.Getenv("GOOGLE_SHEET_ID")
	credFile := envOr("GOOGLE_SERVICE_ACCOUNT_FILE", sheets.DefaultCredentialsFile)

	if apiKey == "" {
		slog.Warn("GOOGLE_API_KEY is not set, searches will fail")
	}
	if sheetID == "" {
		slog.Warn("GOOGLE_SHEET_ID is not set, logging to the sheet will fail")
	}
	if _, err := os.Stat(credFile); err != nil {
		slog.Warn("service account file not found, logging to the sheet will fail", "path", credFile)
	}

	// ---- Clients ----
	finder, err := places.NewClient(places.WithStaticAPIKey(apiKey))
	if err != nil {
		slog.Error("failed to create places client", "err", err)
		os.Exit(1)
	}
	ledger := sheets.NewClient(sheetID, sheets.WithCredentialsFile(credFile))

	svc, err := usecase.NewChatService(finder, ledger)
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}

	runChat(ctx, svc)
}

func runChat(ctx context.Context, svc *usecase.ChatService) {
	fmt.Println("Food Donation & Logging Assistant")
	fmt.Println("Hello! I can find local organizations for your food donations and log the request for you.")
	fmt.Println(`Example: "I want to donate food in New Delhi"`)

	scanner := bufio.NewScanner(os.Stdin)
	sessionID := ""
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if isExitCommand(input) {
			fmt.Println("Thank you! Goodbye!")
			return
		}

		out, err := svc.Turn(ctx, usecase.TurnInput{Message: input, SessionID: sessionID})
		if err != nil {
			fmt.Printf("Assistant: Something went wrong: %v\n", err)
			continue
		}
		sessionID = out.SessionID
		fmt.Printf("Assistant: %s\n", out.Reply)
	}
}

func isExitCommand(input string) bool {
	for _, cmd := range exitCommands {
		if strings.EqualFold(input, cmd) {
			return true
		}
	}
	return false
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
