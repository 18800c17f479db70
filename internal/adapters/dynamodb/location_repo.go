package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/samirrijal/fleetspot/internal/core/domain"
)

// maxBatchWrite is DynamoDB's BatchWriteItem request limit.
const maxBatchWrite = 25

const maxUnprocessedRetries = 5

type locationItem struct {
	DriverID  string  `dynamodbav:"driver_id"`
	CreatedAt int64   `dynamodbav:"created_at"`
	ID        string  `dynamodbav:"id"`
	Latitude  float64 `dynamodbav:"latitude"`
	Longitude float64 `dynamodbav:"longitude"`
}

func newLocationItem(s *domain.Sample) locationItem {
	return locationItem{
		DriverID:  s.DriverID,
		CreatedAt: s.Timestamp.UTC().UnixNano(),
		ID:        s.ID,
		Latitude:  s.Point.Latitude,
		Longitude: s.Point.Longitude,
	}
}

func (i locationItem) toDomain() domain.Sample {
	return domain.Sample{
		ID:        i.ID,
		DriverID:  i.DriverID,
		Point:     domain.Point{Latitude: i.Latitude, Longitude: i.Longitude},
		Timestamp: time.Unix(0, i.CreatedAt).UTC(),
	}
}

// LocationRepo implements ports.LocationRepository on DynamoDB.
type LocationRepo struct {
	store *Store
}

// NewLocationRepo creates a new LocationRepo.
func NewLocationRepo(store *Store) *LocationRepo {
	return &LocationRepo{store: store}
}

// Insert stores a single sample.
func (r *LocationRepo) Insert(ctx context.Context, s *domain.Sample) error {
	item, err := attributevalue.MarshalMap(newLocationItem(s))
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}
	_, err = r.store.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.store.locationsTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put sample: %w", err)
	}
	return nil
}

// InsertBatch stores samples in BatchWriteItem chunks, retrying unprocessed items.
func (r *LocationRepo) InsertBatch(ctx context.Context, samples []domain.Sample) error {
	for start := 0; start < len(samples); start += maxBatchWrite {
		end := min(start+maxBatchWrite, len(samples))

		requests := make([]types.WriteRequest, 0, end-start)
		for i := start; i < end; i++ {
			item, err := attributevalue.MarshalMap(newLocationItem(&samples[i]))
			if err != nil {
				return fmt.Errorf("marshal sample: %w", err)
			}
			requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
		}

		pending := map[string][]types.WriteRequest{r.store.locationsTable: requests}
		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt > maxUnprocessedRetries {
				return fmt.Errorf("batch write: %d items left unprocessed", len(pending[r.store.locationsTable]))
			}
			if attempt > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Duration(attempt*50) * time.Millisecond):
				}
			}
			out, err := r.store.api.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return fmt.Errorf("batch write: %w", err)
			}
			pending = out.UnprocessedItems
		}
	}
	return nil
}

// FindInRegion scans for samples inside box recorded in [from, to].
// Scan order is arbitrary, so results are sorted by time then id.
func (r *LocationRepo) FindInRegion(ctx context.Context, box domain.BoundingBox, from, to time.Time, limit int) ([]domain.Point, error) {
	values := map[string]types.AttributeValue{
		":s":    numberAV(box.South),
		":n":    numberAV(box.North),
		":w":    numberAV(box.West),
		":e":    numberAV(box.East),
		":from": intAV(from.UTC().UnixNano()),
		":to":   intAV(to.UTC().UnixNano()),
	}

	var (
		items []locationItem
		last  map[string]types.AttributeValue
	)
	for {
		out, err := r.store.api.Scan(ctx, &dynamodb.ScanInput{
			TableName: aws.String(r.store.locationsTable),
			FilterExpression: aws.String(
				"latitude BETWEEN :s AND :n AND longitude BETWEEN :w AND :e AND created_at BETWEEN :from AND :to"),
			ExpressionAttributeValues: values,
			ExclusiveStartKey:         last,
		})
		if err != nil {
			return nil, fmt.Errorf("scan locations: %w", err)
		}
		for _, raw := range out.Items {
			var item locationItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("unmarshal sample: %w", err)
			}
			items = append(items, item)
		}
		last = out.LastEvaluatedKey
		if last == nil || (limit > 0 && len(items) >= limit) {
			break
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt != items[j].CreatedAt {
			return items[i].CreatedAt < items[j].CreatedAt
		}
		return items[i].ID < items[j].ID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	points := make([]domain.Point, len(items))
	for i, item := range items {
		points[i] = domain.Point{Latitude: item.Latitude, Longitude: item.Longitude}
	}
	return points, nil
}

// FindByDriver queries a driver's partition for [from, to], oldest first.
func (r *LocationRepo) FindByDriver(ctx context.Context, driverID string, from, to time.Time) ([]domain.Sample, error) {
	var (
		samples []domain.Sample
		last    map[string]types.AttributeValue
	)
	for {
		out, err := r.store.api.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.store.locationsTable),
			KeyConditionExpression: aws.String("driver_id = :d AND created_at BETWEEN :from AND :to"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":d":    &types.AttributeValueMemberS{Value: driverID},
				":from": intAV(from.UTC().UnixNano()),
				":to":   intAV(to.UTC().UnixNano()),
			},
			ScanIndexForward:  aws.Bool(true),
			ExclusiveStartKey: last,
		})
		if err != nil {
			return nil, fmt.Errorf("query locations: %w", err)
		}
		for _, raw := range out.Items {
			var item locationItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("unmarshal sample: %w", err)
			}
			samples = append(samples, item.toDomain())
		}
		last = out.LastEvaluatedKey
		if last == nil {
			break
		}
	}
	return samples, nil
}

func numberAV(v float64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatFloat(v, 'f', -1, 64)}
}

func intAV(v int64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(v, 10)}
}
