// Package handler adapts the chat service to API Gateway for the Lambda
// deployment: one conversational turn per invocation.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"donation-agent/internal/usecase"
)

type turnRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type turnResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"sessionId"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// TurnService is the usecase surface the handler depends on.
type TurnService interface {
	Turn(ctx context.Context, in usecase.TurnInput) (usecase.TurnOutput, error)
}

type Handler struct {
	svc TurnService
}

func NewHandler(svc TurnService) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("handler: turn service must not be nil")
	}
	return &Handler{svc: svc}, nil
}

func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(req.Headers)

	var in turnRequest
	if err := json.Unmarshal([]byte(req.Body), &in); err != nil {
		return respond(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput), Reason: "malformed_body"}, corrID), nil
	}

	out, err := h.svc.Turn(ctx, usecase.TurnInput{Message: in.Message, SessionID: in.SessionID})
	if err != nil {
		status, code, reason := mapError(err)
		return respond(status, errorResponse{Error: code, Reason: reason}, corrID), nil
	}

	return respond(http.StatusOK, turnResponse{Reply: out.Reply, SessionID: out.SessionID}, corrID), nil
}

func mapError(err error) (status int, code, reason string) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		return http.StatusInternalServerError, string(usecase.ErrorInternal), ""
	}
	switch ucErr.Code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest, string(ucErr.Code), ucErr.Reason
	case usecase.ErrorLookup, usecase.ErrorLedger, usecase.ErrorUpstream:
		return http.StatusBadGateway, string(ucErr.Code), ucErr.Reason
	default:
		return http.StatusInternalServerError, string(ucErr.Code), ucErr.Reason
	}
}

func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, "x-correlation-id") && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

func respond(status int, body interface{}, corrID string) events.APIGatewayProxyResponse {
	raw, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json", "X-Correlation-Id": corrID},
			Body:       `{"error":"INTERNAL_ERROR"}`,
		}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json", "X-Correlation-Id": corrID},
		Body:       string(raw),
	}
}
