// Package repository implements the request ledger over DynamoDB for the
// Lambda deployment: one item per organization plus a request meta item,
// written atomically.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"donation-agent/internal/domain"
)

const (
	pkPrefixRequest = "REQ#"
	skPrefixOrg     = "ORG#"
	skMeta          = "META#"
	ttlDuration     = 30 * 24 * time.Hour // 30-day retention

	successAck = "Request logged successfully in the donation ledger."
)

// dynamodbAPI is the minimal DynamoDB interface required by Ledger.
// Defined here for testability.
type dynamodbAPI interface {
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Ledger appends donation requests to a DynamoDB table. Appends are not
// idempotent: every call writes a fresh request under a new ID.
type Ledger struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
	newID     func() string
}

func NewLedger(api dynamodbAPI, tableName string) (*Ledger, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Ledger{
		api:       api,
		tableName: tableName,
		now:       time.Now,
		newID:     uuid.NewString,
	}, nil
}

// requestPK returns the partition key shared by all rows of one request.
func requestPK(requestID string) string {
	return pkPrefixRequest + requestID
}

// orgSK returns the sort key for the i-th organization row; zero-padding
// keeps rows in cache order under lexicographic sort.
func orgSK(i int) string {
	return fmt.Sprintf("%s%03d", skPrefixOrg, i)
}

func ttlValue(now time.Time) int64 {
	return now.Add(ttlDuration).Unix()
}

// LogRequest writes one item per organization in order plus a meta item,
// all in a single transaction so a partial request never lands. An empty
// organization list is a zero-row success.
func (l *Ledger) LogRequest(ctx context.Context, donorName, donorPhone string, orgs []domain.Organization) (string, error) {
	if len(orgs) == 0 {
		return successAck, nil
	}

	requestID := l.newID()
	now := l.now().UTC()
	pk := requestPK(requestID)
	ttl := ttlValue(now)
	createdAt := now.Format(time.RFC3339)

	items := make([]types.TransactWriteItem, 0, len(orgs)+1)
	items = append(items, types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(l.tableName),
			Item:      metaItem(pk, requestID, donorName, donorPhone, len(orgs), createdAt, ttl),
		},
	})
	for i, org := range orgs {
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(l.tableName),
				Item:      orgItem(pk, orgSK(i), donorName, donorPhone, org, createdAt, ttl),
			},
		})
	}

	_, err := l.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		return "", fmt.Errorf("an error occurred while writing to the ledger: %w", err)
	}
	return successAck, nil
}

func metaItem(pk, requestID, donorName, donorPhone string, orgCount int, createdAt string, ttl int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: pk},
		"SK":         &types.AttributeValueMemberS{Value: skMeta},
		"requestId":  &types.AttributeValueMemberS{Value: requestID},
		"donorName":  &types.AttributeValueMemberS{Value: donorName},
		"donorPhone": &types.AttributeValueMemberS{Value: donorPhone},
		"orgCount":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", orgCount)},
		"createdAt":  &types.AttributeValueMemberS{Value: createdAt},
		"ttl":        &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", ttl)},
	}
}

func orgItem(pk, sk, donorName, donorPhone string, org domain.Organization, createdAt string, ttl int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: pk},
		"SK":         &types.AttributeValueMemberS{Value: sk},
		"donorName":  &types.AttributeValueMemberS{Value: donorName},
		"donorPhone": &types.AttributeValueMemberS{Value: donorPhone},
		"orgName":    &types.AttributeValueMemberS{Value: org.Name},
		"orgAddress": &types.AttributeValueMemberS{Value: org.Address},
		"orgPhone":   &types.AttributeValueMemberS{Value: org.Phone},
		"orgWebsite": &types.AttributeValueMemberS{Value: org.Website},
		"createdAt":  &types.AttributeValueMemberS{Value: createdAt},
		"ttl":        &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", ttl)},
	}
}
