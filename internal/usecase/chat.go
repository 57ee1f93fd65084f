package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"donation-agent/internal/domain"
)

const (
	// maxCachedOrganizations bounds the per-session organization cache;
	// the lookup client enforces the same limit on its side.
	maxCachedOrganizations = 5

	defaultMaxMessage = 500
)

// RecipientFinder locates organizations near a free-text location. A
// failure is terminal for that search attempt; the service never retries.
type RecipientFinder interface {
	FindRecipients(ctx context.Context, location string) ([]domain.Organization, error)
}

// RequestLedger durably appends one record per organization. Appends are
// not idempotent, so the service never retries an ambiguous failure.
type RequestLedger interface {
	LogRequest(ctx context.Context, donorName, donorPhone string, orgs []domain.Organization) (string, error)
}

// ChatService is the message router: it interprets one free-text turn
// against the session's conversation state, advancing the pending step or
// classifying intent, and confines side effects to the search and logging
// steps.
type ChatService struct {
	finder     RecipientFinder
	ledger     RequestLedger
	classifier Classifier
	logger     *slog.Logger
	sessions   *SessionStore
	maxMsgLen  int
}

type Option func(*ChatService)

// WithClassifier replaces the default keyword classifier.
func WithClassifier(c Classifier) Option {
	return func(s *ChatService) {
		s.classifier = c
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *ChatService) {
		s.logger = l
	}
}

// WithMaxMessageLength caps the accepted turn length at the Turn boundary.
func WithMaxMessageLength(n int) Option {
	return func(s *ChatService) {
		s.maxMsgLen = n
	}
}

func NewChatService(finder RecipientFinder, ledger RequestLedger, opts ...Option) (*ChatService, error) {
	if finder == nil {
		return nil, errors.New("usecase: recipient finder must not be nil")
	}
	if ledger == nil {
		return nil, errors.New("usecase: request ledger must not be nil")
	}
	s := &ChatService{
		finder:     finder,
		ledger:     ledger,
		classifier: KeywordClassifier{},
		logger:     slog.Default(),
		sessions:   NewSessionStore(),
		maxMsgLen:  defaultMaxMessage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TurnInput is one conversational turn crossing the process boundary.
type TurnInput struct {
	Message   string
	SessionID string
}

type TurnOutput struct {
	Reply     string
	SessionID string
}

// Turn resolves the session for the input (minting one when the ID is
// empty) and routes the message through it. This is the entry point used
// by the deployments; Route stays callable directly for a caller that
// owns its session.
func (s *ChatService) Turn(ctx context.Context, in TurnInput) (TurnOutput, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return TurnOutput{}, newError(ErrorInvalidInput, "empty_message", nil)
	}
	if len(message) > s.maxMsgLen {
		return TurnOutput{}, newError(ErrorInvalidInput, "message_too_long", nil)
	}

	sess := s.sessions.Get(strings.TrimSpace(in.SessionID))
	reply, err := s.Route(ctx, sess, message)
	if err != nil {
		return TurnOutput{}, err
	}
	return TurnOutput{Reply: reply, SessionID: sess.ID}, nil
}

// Route processes one turn to completion, including any blocking client
// call, before returning. Operational failures (lookup, ledger) are part
// of the conversation and come back as reply text; the error return is
// reserved for contract violations.
func (s *ChatService) Route(ctx context.Context, sess *Session, message string) (string, error) {
	if sess == nil {
		return "", newError(ErrorInternal, "nil_session", nil)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	trimmed := strings.TrimSpace(message)

	switch sess.state.Pending {
	case domain.StepLogConfirmation:
		return s.handleConfirmation(sess, trimmed), nil
	case domain.StepDonorName:
		return s.handleName(sess, trimmed), nil
	case domain.StepDonorPhone:
		return s.handlePhone(ctx, sess, trimmed), nil
	}

	if s.classifier.Classify(trimmed) == IntentSearch {
		return s.handleSearch(ctx, sess, trimmed), nil
	}
	return helpReply, nil
}

func (s *ChatService) handleSearch(ctx context.Context, sess *Session, message string) string {
	// Discard before the lookup so a failed search leaves no stale cache.
	sess.cache = nil

	location, ok := ExtractLocation(message)
	if !ok {
		return clarifyLocationReply
	}

	s.logger.Info("searching for organizations", "location", location)
	orgs, err := s.finder.FindRecipients(ctx, location)
	if err != nil {
		s.logger.Error("organization lookup failed", "location", location, "err", err)
		return lookupFailedReply(err)
	}
	if len(orgs) == 0 {
		return lookupFailedReply(errors.New("no organizations found near " + location))
	}
	if len(orgs) > maxCachedOrganizations {
		orgs = orgs[:maxCachedOrganizations]
	}

	sess.cache = orgs
	sess.state.Pending = domain.StepLogConfirmation
	return searchResultsReply(location, orgs)
}

func (s *ChatService) handleConfirmation(sess *Session, answer string) string {
	if strings.EqualFold(answer, "yes") {
		sess.state.Pending = domain.StepDonorName
		return askNameReply
	}
	sess.state.Reset()
	sess.cache = nil
	return declinedReply
}

func (s *ChatService) handleName(sess *Session, name string) string {
	if name == "" {
		return askNameReply
	}
	sess.state.DonorName = name
	sess.state.Pending = domain.StepDonorPhone
	return askPhoneReply
}

func (s *ChatService) handlePhone(ctx context.Context, sess *Session, phone string) string {
	if phone == "" {
		return askPhoneReply
	}
	sess.state.DonorPhone = phone

	name := sess.state.DonorName
	orgs := sess.cache

	// Cleared regardless of the ledger outcome so the donor is never stuck
	// mid-flow; only the reply text differs on failure.
	sess.state.Reset()
	sess.cache = nil

	s.logger.Info("logging donation request", "organizations", len(orgs))
	ack, err := s.ledger.LogRequest(ctx, name, phone, orgs)
	if err != nil {
		s.logger.Error("ledger append failed", "err", err)
		return ledgerFailedReply(err)
	}
	return ack
}
