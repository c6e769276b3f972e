package library

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoStore is the server-side backend: one table, items and ideas
// partitioned by record type, GSI1 ordering both newest-first.
type DynamoStore struct {
	client    *dynamodb.Client
	tableName string
}

// NewDynamoStore creates a DynamoDB-backed library.
func NewDynamoStore(client *dynamodb.Client, tableName string) *DynamoStore {
	return &DynamoStore{client: client, tableName: tableName}
}

type itemRecord struct {
	PK             string `dynamodbav:"PK"`
	SK             string `dynamodbav:"SK"`
	GSI1PK         string `dynamodbav:"GSI1PK"`
	GSI1SK         string `dynamodbav:"GSI1SK"`
	ItemID         string `dynamodbav:"itemId"`
	Title          string `dynamodbav:"title"`
	OutlineContent string `dynamodbav:"outlineContent,omitempty"`
	Script         string `dynamodbav:"script,omitempty"`
	ParamsJSON     string `dynamodbav:"paramsJson,omitempty"`
	CachedJSON     string `dynamodbav:"cachedJson,omitempty"`
	CreatedAt      string `dynamodbav:"createdAt"`
}

type ideaRecord struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	GSI1PK    string `dynamodbav:"GSI1PK"`
	GSI1SK    string `dynamodbav:"GSI1SK"`
	IdeaID    string `dynamodbav:"ideaId"`
	Title     string `dynamodbav:"title"`
	ThaiTitle string `dynamodbav:"thaiTitle,omitempty"`
	Outline   string `dynamodbav:"outline,omitempty"`
	CreatedAt string `dynamodbav:"createdAt"`
}

func (r itemRecord) toItem() (Item, error) {
	item := Item{
		ID:             r.ItemID,
		Title:          r.Title,
		OutlineContent: r.OutlineContent,
		Script:         r.Script,
	}
	if r.ParamsJSON != "" {
		if err := json.Unmarshal([]byte(r.ParamsJSON), &item.Params); err != nil {
			return Item{}, fmt.Errorf("decode params: %w", err)
		}
	}
	if r.CachedJSON != "" {
		item.Cached = &CachedData{}
		if err := json.Unmarshal([]byte(r.CachedJSON), item.Cached); err != nil {
			return Item{}, fmt.Errorf("decode cached data: %w", err)
		}
	}
	if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
		item.CreatedAt = t
	}
	return item, nil
}

// SaveItem upserts by ID. New items without an ID get one assigned.
func (s *DynamoStore) SaveItem(ctx context.Context, item Item) error {
	if item.ID == "" {
		id, err := NewID()
		if err != nil {
			return err
		}
		item.ID = id
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	created := item.CreatedAt.Format(time.RFC3339)

	rec := itemRecord{
		PK:             "ITEM#" + item.ID,
		SK:             "METADATA",
		GSI1PK:         "ITEMS",
		GSI1SK:         created + "#" + item.ID,
		ItemID:         item.ID,
		Title:          item.Title,
		OutlineContent: item.OutlineContent,
		Script:         item.Script,
		CreatedAt:      created,
	}
	params, err := json.Marshal(item.Params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	rec.ParamsJSON = string(params)
	if item.Cached != nil {
		cached, err := json.Marshal(item.Cached)
		if err != nil {
			return fmt.Errorf("encode cached data: %w", err)
		}
		rec.CachedJSON = string(cached)
	}

	av, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal library item: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.tableName,
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put library item: %w", err)
	}
	return nil
}

// GetItem retrieves one item by ID, nil when absent.
func (s *DynamoStore) GetItem(ctx context.Context, id string) (*Item, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "ITEM#" + id},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get library item: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}
	var rec itemRecord
	if err := attributevalue.UnmarshalMap(result.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal library item: %w", err)
	}
	item, err := rec.toItem()
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems returns items newest first via GSI1.
func (s *DynamoStore) ListItems(ctx context.Context) ([]Item, error) {
	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &s.tableName,
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "ITEMS"},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("list library items: %w", err)
	}
	var recs []itemRecord
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &recs); err != nil {
		return nil, fmt.Errorf("unmarshal library list: %w", err)
	}
	items := make([]Item, 0, len(recs))
	for _, rec := range recs {
		item, err := rec.toItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// DeleteItem removes one item; unknown IDs are a no-op.
func (s *DynamoStore) DeleteItem(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "ITEM#" + id},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		return fmt.Errorf("delete library item: %w", err)
	}
	return nil
}

// SaveIdea appends an idea unless an identical (title, outline) pair is
// already stored.
func (s *DynamoStore) SaveIdea(ctx context.Context, idea Idea) (bool, error) {
	existing, err := s.ListIdeas(ctx)
	if err != nil {
		return false, err
	}
	for _, e := range existing {
		if e.Title == idea.Title && e.Outline == idea.Outline {
			return false, nil
		}
	}
	if idea.ID == "" {
		id, err := NewID()
		if err != nil {
			return false, err
		}
		idea.ID = id
	}
	created := time.Now().UTC().Format(time.RFC3339)
	rec := ideaRecord{
		PK:        "IDEA#" + idea.ID,
		SK:        "METADATA",
		GSI1PK:    "IDEAS",
		GSI1SK:    created + "#" + idea.ID,
		IdeaID:    idea.ID,
		Title:     idea.Title,
		ThaiTitle: idea.ThaiTitle,
		Outline:   idea.Outline,
		CreatedAt: created,
	}
	av, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return false, fmt.Errorf("marshal idea: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.tableName,
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return false, fmt.Errorf("put idea: %w", err)
	}
	return true, nil
}

// ListIdeas returns ideas oldest first via GSI1.
func (s *DynamoStore) ListIdeas(ctx context.Context) ([]Idea, error) {
	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &s.tableName,
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "IDEAS"},
		},
		ScanIndexForward: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	var recs []ideaRecord
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &recs); err != nil {
		return nil, fmt.Errorf("unmarshal idea list: %w", err)
	}
	ideas := make([]Idea, 0, len(recs))
	for _, rec := range recs {
		ideas = append(ideas, Idea{
			ID:        rec.IdeaID,
			Title:     rec.Title,
			ThaiTitle: rec.ThaiTitle,
			Outline:   rec.Outline,
		})
	}
	return ideas, nil
}

// DeleteIdea removes one idea; unknown IDs are a no-op.
func (s *DynamoStore) DeleteIdea(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "IDEA#" + id},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		return fmt.Errorf("delete idea: %w", err)
	}
	return nil
}
