package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/edgequery/blobstore"
)

// Catalog records published edge lists in DynamoDB. Every publication under
// a base URI gets the next version number; a conditional write makes
// concurrent publishers fail instead of overwriting each other.
//
// Table schema:
//   - Partition key: base_uri (string) - the S3 location of the run
//   - Sort key: version (number) - monotonically increasing version
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name edgequery-catalog \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type Catalog struct {
	client    DDBClient
	tableName string
	baseURI   string
	now       func() time.Time
}

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

var _ DDBClient = (*dynamodb.Client)(nil)

// ErrConcurrentModification is returned when another writer published the
// same version first.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// Entry describes one published edge list.
type Entry struct {
	Version     uint64
	Object      string
	Kernel      string
	Edges       int
	Compression string
	CreatedAt   time.Time
}

// NewCatalog creates a catalog for the run at baseURI
// (e.g. "s3://bucket/runs/run-1").
func NewCatalog(client DDBClient, tableName, baseURI string) *Catalog {
	return &Catalog{
		client:    client,
		tableName: tableName,
		baseURI:   baseURI,
		now:       time.Now,
	}
}

// Latest returns the most recent entry, or blobstore.ErrNotFound.
func (c *Catalog) Latest(ctx context.Context) (Entry, error) {
	resp, err := c.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: c.baseURI},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return Entry{}, fmt.Errorf("failed to query DynamoDB: %w", err)
	}
	if len(resp.Items) == 0 {
		return Entry{}, blobstore.ErrNotFound
	}
	return decodeEntry(resp.Items[0])
}

// Publish records e as the next version and returns the stored entry.
func (c *Catalog) Publish(ctx context.Context, e Entry) (Entry, error) {
	latest, err := c.Latest(ctx)
	if err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		return Entry{}, err
	}

	e.Version = latest.Version + 1
	e.CreatedAt = c.now().UTC()

	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri":    &types.AttributeValueMemberS{Value: c.baseURI},
			"version":     &types.AttributeValueMemberN{Value: strconv.FormatUint(e.Version, 10)},
			"object":      &types.AttributeValueMemberS{Value: e.Object},
			"kernel":      &types.AttributeValueMemberS{Value: e.Kernel},
			"edges":       &types.AttributeValueMemberN{Value: strconv.Itoa(e.Edges)},
			"compression": &types.AttributeValueMemberS{Value: e.Compression},
			"created_at":  &types.AttributeValueMemberS{Value: e.CreatedAt.Format(time.RFC3339Nano)},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return Entry{}, ErrConcurrentModification
		}
		return Entry{}, fmt.Errorf("failed to publish version to DynamoDB: %w", err)
	}

	return e, nil
}

func decodeEntry(item map[string]types.AttributeValue) (Entry, error) {
	var (
		e   Entry
		err error
	)

	str := func(name string) string {
		if v, ok := item[name].(*types.AttributeValueMemberS); ok {
			return v.Value
		}
		return ""
	}

	v, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return Entry{}, errors.New("invalid version attribute in DynamoDB")
	}
	if e.Version, err = strconv.ParseUint(v.Value, 10, 64); err != nil {
		return Entry{}, fmt.Errorf("failed to parse version: %w", err)
	}

	if n, ok := item["edges"].(*types.AttributeValueMemberN); ok {
		if e.Edges, err = strconv.Atoi(n.Value); err != nil {
			return Entry{}, fmt.Errorf("failed to parse edges: %w", err)
		}
	}

	e.Object = str("object")
	e.Kernel = str("kernel")
	e.Compression = str("compression")
	if ts := str("created_at"); ts != "" {
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return Entry{}, fmt.Errorf("failed to parse created_at: %w", err)
		}
	}

	return e, nil
}
