package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/rfpforge/rfpforge/internal/domain"
)

// DynamoSessionStore keeps session snapshots in a managed key-value table.
type DynamoSessionStore struct {
	client *dynamodb.Client
	table  string
}

// NewDynamoSessionStore builds the store and creates the table if absent.
func NewDynamoSessionStore(ctx context.Context, awsCfg aws.Config, table string) (*DynamoSessionStore, error) {
	client := dynamodb.NewFromConfig(awsCfg)

	_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)})
	if err != nil {
		var notFound *dbtypes.ResourceNotFoundException
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to describe table %s: %w", table, err)
		}

		_, err = client.CreateTable(ctx, &dynamodb.CreateTableInput{
			TableName: aws.String(table),
			AttributeDefinitions: []dbtypes.AttributeDefinition{
				{AttributeName: aws.String("session_id"), AttributeType: dbtypes.ScalarAttributeTypeS},
			},
			KeySchema: []dbtypes.KeySchemaElement{
				{AttributeName: aws.String("session_id"), KeyType: dbtypes.KeyTypeHash},
			},
			BillingMode: dbtypes.BillingModePayPerRequest,
		})
		if err != nil {
			var inUse *dbtypes.ResourceInUseException
			if !errors.As(err, &inUse) {
				return nil, fmt.Errorf("failed to create table %s: %w", table, err)
			}
		}
	}

	return &DynamoSessionStore{client: client, table: table}, nil
}

// PutSession replaces the full snapshot for a session id.
func (s *DynamoSessionStore) PutSession(ctx context.Context, sessionID string, snap *domain.Snapshot) error {
	snap.SessionID = sessionID
	if snap.UpdatedAt == "" {
		snap.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	item, err := attributevalue.MarshalMap(snap)
	if err != nil {
		return storageErr("put_session", sessionID, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return storageErr("put_session", sessionID, err)
	}

	return nil
}

// GetSession retrieves the snapshot for a session id.
func (s *DynamoSessionStore) GetSession(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]dbtypes.AttributeValue{
			"session_id": &dbtypes.AttributeValueMemberS{Value: sessionID},
		},
	})
	if err != nil {
		return nil, storageErr("get_session", sessionID, err)
	}
	if len(out.Item) == 0 {
		return nil, domain.ErrSessionNotFound
	}

	snap := &domain.Snapshot{}
	if err := attributevalue.UnmarshalMap(out.Item, snap); err != nil {
		return nil, storageErr("get_session", sessionID, err)
	}
	snap.SessionID = sessionID

	return snap, nil
}
