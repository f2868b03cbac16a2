package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shreyas/tweetsched/scheduler/post"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoStore keeps scheduled posts in a table with partition key account (S)
// and sort key scheduledTime (N)
type DynamoStore struct {
	client DynamoAPI
	table  string
}

// NewDynamoStore creates a new DynamoStore over table
func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

func dynamoKey(account string, scheduledTime int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"account":       &types.AttributeValueMemberS{Value: account},
		"scheduledTime": &types.AttributeValueMemberN{Value: strconv.FormatInt(scheduledTime, 10)},
	}
}

// Put writes p with ReturnValues=ALL_OLD so a replaced entry comes back
func (s *DynamoStore) Put(ctx context.Context, p post.ScheduledPost) (*post.ScheduledPost, error) {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scheduled post: %w", err)
	}

	out, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:    aws.String(s.table),
		Item:         item,
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put scheduled post to dynamo: %w", err)
	}

	if len(out.Attributes) == 0 {
		return nil, nil
	}

	previous := &post.ScheduledPost{}
	if err := attributevalue.UnmarshalMap(out.Attributes, previous); err != nil {
		return nil, fmt.Errorf("failed to unmarshal replaced post: %w", err)
	}
	return previous, nil
}

// Get retrieves a single post
func (s *DynamoStore) Get(ctx context.Context, account string, scheduledTime int64) (*post.ScheduledPost, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       dynamoKey(account, scheduledTime),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled post from dynamo: %w", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("%w: %s/%d", post.ErrNotFound, account, scheduledTime)
	}

	p := &post.ScheduledPost{}
	if err := attributevalue.UnmarshalMap(out.Item, p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scheduled post: %w", err)
	}
	return p, nil
}

// Query runs a key-condition query on the account partition, filtering posted
// entries server side and following pagination
func (s *DynamoStore) Query(ctx context.Context, account string, r post.QueryRange) ([]post.ScheduledPost, error) {
	keyCondition, names, values := dynamoKeyCondition(account, r)

	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    aws.String(keyCondition),
		FilterExpression:          aws.String("#isPosted <> :true"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ScanIndexForward:          aws.Bool(true),
	})

	posts := []post.ScheduledPost{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query scheduled posts from dynamo: %w", err)
		}

		var batch []post.ScheduledPost
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scheduled posts: %w", err)
		}
		posts = append(posts, batch...)
	}

	return posts, nil
}

// dynamoKeyCondition builds the key condition for r; present bounds are inclusive.
// DynamoDB rejects unused expression names, so #scheduledTime is only added with a bound.
func dynamoKeyCondition(account string, r post.QueryRange) (string, map[string]string, map[string]types.AttributeValue) {
	names := map[string]string{
		"#account":  "account",
		"#isPosted": "isPosted",
	}
	values := map[string]types.AttributeValue{
		":account": &types.AttributeValueMemberS{Value: account},
		":true":    &types.AttributeValueMemberBOOL{Value: true},
	}

	condition := "#account = :account"
	if r.From != nil || r.To != nil {
		names["#scheduledTime"] = "scheduledTime"
	}
	switch {
	case r.From != nil && r.To != nil:
		condition += " AND #scheduledTime BETWEEN :from AND :to"
		values[":from"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(*r.From, 10)}
		values[":to"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(*r.To, 10)}
	case r.From != nil:
		condition += " AND #scheduledTime >= :from"
		values[":from"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(*r.From, 10)}
	case r.To != nil:
		condition += " AND #scheduledTime <= :to"
		values[":to"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(*r.To, 10)}
	}

	return condition, names, values
}

// SetPosted flags an existing post as posted; the condition keeps it from creating a partial item
func (s *DynamoStore) SetPosted(ctx context.Context, account string, scheduledTime int64, remotePostID string) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.table),
		Key:                 dynamoKey(account, scheduledTime),
		UpdateExpression:    aws.String("SET #isPosted = :true, #remotePostId = :remotePostId"),
		ConditionExpression: aws.String("attribute_exists(#account)"),
		ExpressionAttributeNames: map[string]string{
			"#account":      "account",
			"#isPosted":     "isPosted",
			"#remotePostId": "remotePostId",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true":         &types.AttributeValueMemberBOOL{Value: true},
			":remotePostId": &types.AttributeValueMemberS{Value: remotePostID},
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return fmt.Errorf("%w: %s/%d", post.ErrNotFound, account, scheduledTime)
		}
		return fmt.Errorf("failed to mark post as posted in dynamo: %w", err)
	}
	return nil
}

// Delete removes an existing post
func (s *DynamoStore) Delete(ctx context.Context, account string, scheduledTime int64) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(s.table),
		Key:                      dynamoKey(account, scheduledTime),
		ConditionExpression:      aws.String("attribute_exists(#account)"),
		ExpressionAttributeNames: map[string]string{"#account": "account"},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return fmt.Errorf("%w: %s/%d", post.ErrNotFound, account, scheduledTime)
		}
		return fmt.Errorf("failed to delete post from dynamo: %w", err)
	}
	return nil
}

// Ping checks that the table is reachable
func (s *DynamoStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	return err
}
