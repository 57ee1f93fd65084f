package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"donation-agent/internal/domain"
)

type fakeDynamo struct {
	txErr       error
	lastTxInput *dynamodb.TransactWriteItemsInput
	txCalls     int
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.txCalls++
	f.lastTxInput = in
	return &dynamodb.TransactWriteItemsOutput{}, f.txErr
}

func newTestLedger(t *testing.T, api dynamodbAPI) *Ledger {
	t.Helper()
	l, err := NewLedger(api, "donation-requests")
	require.NoError(t, err)
	l.now = func() time.Time { return time.Date(2026, time.March, 4, 10, 30, 0, 0, time.UTC) }
	l.newID = func() string { return "req-fixed" }
	return l
}

func strVal(t *testing.T, item map[string]types.AttributeValue, key string) string {
	t.Helper()
	v, ok := item[key]
	require.True(t, ok, "missing attribute %q", key)
	s, ok := v.(*types.AttributeValueMemberS)
	require.True(t, ok, "attribute %q is not a string", key)
	return s.Value
}

func sampleOrgs() []domain.Organization {
	return []domain.Organization{
		{Name: "City Food Bank", Address: "12 Main St", Phone: "555-0101", Website: "https://cfb.example"},
		{Name: "Hope Charity", Address: "9 Side Rd", Phone: domain.ContactUnavailable, Website: domain.ContactUnavailable},
	}
}

func TestNewLedger_Validation(t *testing.T) {
	_, err := NewLedger(nil, "tbl")
	require.Error(t, err)
	_, err = NewLedger(&fakeDynamo{}, "  ")
	require.Error(t, err)
}

func TestLogRequest_WritesMetaAndOneItemPerOrganization(t *testing.T) {
	api := &fakeDynamo{}
	l := newTestLedger(t, api)

	ack, err := l.LogRequest(context.Background(), "Asha", "555-0100", sampleOrgs())
	require.NoError(t, err)
	require.Equal(t, successAck, ack)
	require.Equal(t, 1, api.txCalls)

	items := api.lastTxInput.TransactItems
	require.Len(t, items, 3)

	meta := items[0].Put.Item
	require.Equal(t, "REQ#req-fixed", strVal(t, meta, "PK"))
	require.Equal(t, skMeta, strVal(t, meta, "SK"))
	require.Equal(t, "Asha", strVal(t, meta, "donorName"))
	require.Equal(t, "555-0100", strVal(t, meta, "donorPhone"))

	first := items[1].Put.Item
	require.Equal(t, "ORG#000", strVal(t, first, "SK"))
	require.Equal(t, "City Food Bank", strVal(t, first, "orgName"))
	require.Equal(t, "555-0101", strVal(t, first, "orgPhone"))

	second := items[2].Put.Item
	require.Equal(t, "ORG#001", strVal(t, second, "SK"))
	require.Equal(t, "Hope Charity", strVal(t, second, "orgName"))
	require.Equal(t, domain.ContactUnavailable, strVal(t, second, "orgWebsite"))
}

func TestLogRequest_EmptyOrganizations_NoWrite(t *testing.T) {
	api := &fakeDynamo{}
	l := newTestLedger(t, api)

	ack, err := l.LogRequest(context.Background(), "Asha", "555-0100", nil)
	require.NoError(t, err)
	require.Equal(t, successAck, ack)
	require.Zero(t, api.txCalls)
}

func TestLogRequest_TransactError(t *testing.T) {
	api := &fakeDynamo{txErr: errors.New("boom")}
	l := newTestLedger(t, api)

	_, err := l.LogRequest(context.Background(), "Asha", "555-0100", sampleOrgs())
	require.Error(t, err)
	require.Contains(t, err.Error(), "writing to the ledger")
}
