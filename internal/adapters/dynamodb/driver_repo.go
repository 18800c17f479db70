package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/samirrijal/fleetspot/internal/core/domain"
)

type driverItem struct {
	ID        string    `dynamodbav:"id"`
	Name      string    `dynamodbav:"name"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

// DriverRepo implements ports.DriverRepository on DynamoDB.
type DriverRepo struct {
	store *Store
}

// NewDriverRepo creates a new DriverRepo.
func NewDriverRepo(store *Store) *DriverRepo {
	return &DriverRepo{store: store}
}

// Create stores a driver, failing if the id already exists.
func (r *DriverRepo) Create(ctx context.Context, d *domain.Driver) error {
	item, err := attributevalue.MarshalMap(driverItem{
		ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal driver: %w", err)
	}
	_, err = r.store.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.store.driversTable),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("put driver: %w", err)
	}
	return nil
}

// GetByID returns a driver or domain.ErrNotFound.
func (r *DriverRepo) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	out, err := r.store.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.store.driversTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get driver: %w", err)
	}
	if out.Item == nil {
		return nil, domain.ErrNotFound
	}

	var item driverItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal driver: %w", err)
	}
	return item.toDomain(), nil
}

// List scans the table and returns one page ordered by creation time.
func (r *DriverRepo) List(ctx context.Context, offset, limit int) ([]domain.Driver, int, error) {
	var (
		all  []domain.Driver
		last map[string]types.AttributeValue
	)
	for {
		out, err := r.store.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.store.driversTable),
			ExclusiveStartKey: last,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("scan drivers: %w", err)
		}
		for _, raw := range out.Items {
			var item driverItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, 0, fmt.Errorf("unmarshal driver: %w", err)
			}
			all = append(all, *item.toDomain())
		}
		last = out.LastEvaluatedKey
		if last == nil {
			break
		}
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	total := len(all)
	if offset >= total {
		return []domain.Driver{}, total, nil
	}
	end := min(offset+limit, total)
	return all[offset:end], total, nil
}

func (i driverItem) toDomain() *domain.Driver {
	return &domain.Driver{ID: i.ID, Name: i.Name, CreatedAt: i.CreatedAt, UpdatedAt: i.UpdatedAt}
}
