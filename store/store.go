package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/lattice/model"
)

// API is the slice of the DynamoDB client the store calls. It is
// satisfied by *dynamodb.Client and by test fakes.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Store synchronizes mapper records with DynamoDB.
type Store struct {
	client API
	config Config
	logger *slog.Logger
}

// New creates a Store around a DynamoDB client.
func New(client API, config Config) *Store {
	config.validate()
	return &Store{
		client: client,
		config: config,
		logger: config.Logger,
	}
}

// TableFor returns the physical table name for a definition, applying the
// process-wide namespace prefix when one is configured.
func (s *Store) TableFor(def *model.Definition) string {
	ns := model.CurrentSettings().TableNamespace
	if ns == "" {
		return def.Table()
	}
	return ns + "_" + def.Table()
}

// Save synchronizes a record. Unpersisted records are created with a full
// put guarded by attribute_not_exists(id); persisted records are updated
// with a partial expression covering only changed fields, SET for new
// values and REMOVE for fields cleared to nil. When the
// timestamping policy is enabled, created_at and updated_at are populated
// unless the caller wrote them explicitly in the same operation. On
// success the record's clean point is reset.
//
// Store-side validation failures, including item-size rejections, pass
// through opaque and unwrapped; Save never trims attributes to fit.
func (s *Store) Save(ctx context.Context, r *model.Record) error {
	s.touchTimestamps(r)
	if !r.Persisted() {
		return s.create(ctx, r)
	}
	return s.update(ctx, r)
}

// touchTimestamps populates the managed timestamp fields for this
// synchronization. An explicit write in the same operation wins.
func (s *Store) touchTimestamps(r *model.Record) {
	if !model.CurrentSettings().Timestamps {
		return
	}
	now := time.Now().UTC()
	if !r.Persisted() && !r.Changed(model.CreatedAtField) {
		_ = r.Set(model.CreatedAtField, now)
	}
	if !r.Changed(model.UpdatedAtField) {
		_ = r.Set(model.UpdatedAtField, now)
	}
}

func (s *Store) create(ctx context.Context, r *model.Record) error {
	item, err := r.DumpItem(false)
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.TableFor(r.Definition())),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrAlreadyExists
		}
		return err
	}

	s.logger.Debug("created record",
		"type", r.Definition().Name(),
		"table", s.TableFor(r.Definition()),
	)
	r.MarkClean()
	return nil
}

func (s *Store) update(ctx context.Context, r *model.Record) error {
	changed, err := r.DumpItem(true)
	if err != nil {
		return err
	}
	removed := clearedWireNames(r)
	if len(changed) == 0 && len(removed) == 0 {
		return nil
	}

	key, err := recordKey(r)
	if err != nil {
		return err
	}

	expr := buildUpdate(changed, removed)

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.TableFor(r.Definition())),
		Key:                       key,
		UpdateExpression:          aws.String(expr.expression),
		ConditionExpression:       aws.String("attribute_exists(id)"),
		ExpressionAttributeNames:  expr.names,
		ExpressionAttributeValues: expr.values,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrNotFound
		}
		return err
	}

	s.logger.Debug("updated record",
		"type", r.Definition().Name(),
		"changed", len(changed),
		"removed", len(removed),
	)
	r.MarkClean()
	return nil
}

// Find retrieves a record by id, returning ErrNotFound when missing.
func (s *Store) Find(ctx context.Context, def *model.Definition, id string) (*model.Record, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.TableFor(def)),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(s.config.ConsistentReads),
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, ErrNotFound
	}
	return model.Hydrate(def, result.Item)
}

// Delete removes a record's item. Deleting an item that is already gone
// is not an error.
func (s *Store) Delete(ctx context.Context, r *model.Record) error {
	key, err := recordKey(r)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.TableFor(r.Definition())),
		Key:       key,
	})
	return err
}

// updateExpr is a built update expression with its placeholder maps.
// values is nil when the expression carries no SET clause.
type updateExpr struct {
	expression string
	names      map[string]string
	values     map[string]types.AttributeValue
}

// buildUpdate turns dumped attributes into a SET expression and cleared
// attributes into a REMOVE expression, using numbered placeholders.
// Attributes are visited in sorted order so the expression is
// deterministic. The id key attribute never appears in either clause.
func buildUpdate(item map[string]types.AttributeValue, removed []string) updateExpr {
	wireNames := make([]string, 0, len(item))
	for k := range item {
		if k == model.IDField {
			continue
		}
		wireNames = append(wireNames, k)
	}
	sort.Strings(wireNames)

	removedNames := make([]string, 0, len(removed))
	for _, k := range removed {
		if k == model.IDField {
			continue
		}
		removedNames = append(removedNames, k)
	}
	sort.Strings(removedNames)

	expr := updateExpr{
		names: make(map[string]string, len(wireNames)+len(removedNames)),
	}
	if len(wireNames) > 0 {
		expr.values = make(map[string]types.AttributeValue, len(wireNames))
	}

	sets := make([]string, 0, len(wireNames))
	for i, k := range wireNames {
		nameKey := fmt.Sprintf("#attr%d", i)
		valueKey := fmt.Sprintf(":val%d", i)
		expr.names[nameKey] = k
		expr.values[valueKey] = item[k]
		sets = append(sets, fmt.Sprintf("%s = %s", nameKey, valueKey))
	}
	removes := make([]string, 0, len(removedNames))
	for i, k := range removedNames {
		nameKey := fmt.Sprintf("#attr%d", len(wireNames)+i)
		expr.names[nameKey] = k
		removes = append(removes, nameKey)
	}

	var parts []string
	if len(sets) > 0 {
		parts = append(parts, "SET "+strings.Join(sets, ", "))
	}
	if len(removes) > 0 {
		parts = append(parts, "REMOVE "+strings.Join(removes, ", "))
	}
	expr.expression = strings.Join(parts, " ")
	return expr
}

// clearedWireNames returns the wire names of dirty fields whose current
// value is nil. Dumped items omit nil values, so a field cleared on a
// persisted record must travel as a REMOVE clause or the clear would
// never reach the table.
func clearedWireNames(r *model.Record) []string {
	wire := make(map[string]string, len(r.Definition().Metadata()))
	for _, info := range r.Definition().Metadata() {
		wire[info.Name] = info.WireName
	}
	var names []string
	for _, name := range r.ChangedFields() {
		v, err := r.Get(name)
		if err != nil || v != nil {
			continue
		}
		names = append(names, wire[name])
	}
	return names
}

// recordKey builds the primary key map from a record's id field.
func recordKey(r *model.Record) (map[string]types.AttributeValue, error) {
	v, err := r.Get(model.IDField)
	if err != nil {
		return nil, err
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return nil, ErrMissingID
	}
	return idKey(id), nil
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		model.IDField: &types.AttributeValueMemberS{Value: id},
	}
}
