// Package stream hydrates lattice records from DynamoDB Streams events.
package stream

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/lattice/model"
)

// RecordFunc is invoked for every hydrated record. eventName is the
// stream event type: INSERT, MODIFY, or REMOVE. For REMOVE events the
// record is hydrated from the old image.
type RecordFunc func(ctx context.Context, eventName string, rec *model.Record) error

// Handler turns raw stream events into mapper records and hands them to
// a callback. Definitions are resolved through a registry keyed by the
// item's discriminator attribute, so one handler serves a whole
// single-table hierarchy.
type Handler struct {
	registry *model.Registry
	fn       RecordFunc
	logger   *slog.Logger
}

// NewHandler creates a stream handler. This function is designed to feed
// an AWS Lambda handler via [Handler.Handle].
func NewHandler(registry *model.Registry, fn RecordFunc, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		registry: registry,
		fn:       fn,
		logger:   logger,
	}
}

// Handle processes a DynamoDB stream event, hydrating each record image
// and invoking the callback. Items whose discriminator is missing or
// unregistered are skipped with a warning; a callback error stops the
// batch so the event source retries.
func (h *Handler) Handle(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process stream record",
				"eventID", record.EventID,
				"error", err,
			)
			return err
		}
	}
	return nil
}

func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	image := record.Change.NewImage
	if record.EventName == "REMOVE" {
		image = record.Change.OldImage
	}
	if len(image) == 0 {
		return nil
	}

	item := ConvertImage(image)

	typeName := ""
	if v, ok := item[model.DiscriminatorField].(*types.AttributeValueMemberS); ok {
		typeName = v.Value
	}
	def, ok := h.registry.Lookup(typeName)
	if !ok {
		h.logger.Warn("skipping item with unregistered type",
			"eventID", record.EventID,
			"type", typeName,
		)
		return nil
	}

	rec, err := model.Hydrate(def, item)
	if err != nil {
		return fmt.Errorf("hydrate %s: %w", typeName, err)
	}

	return h.fn(ctx, record.EventName, rec)
}

// ConvertImage converts a stream image into the attribute-value form the
// mapper loads from. Nested lists and maps convert recursively.
func ConvertImage(image map[string]events.DynamoDBAttributeValue) map[string]types.AttributeValue {
	item := make(map[string]types.AttributeValue, len(image))
	for k, v := range image {
		if av := convertValue(v); av != nil {
			item[k] = av
		}
	}
	return item
}

func convertValue(v events.DynamoDBAttributeValue) types.AttributeValue {
	switch v.DataType() {
	case events.DataTypeString:
		return &types.AttributeValueMemberS{Value: v.String()}
	case events.DataTypeNumber:
		return &types.AttributeValueMemberN{Value: v.Number()}
	case events.DataTypeBinary:
		return &types.AttributeValueMemberB{Value: v.Binary()}
	case events.DataTypeBoolean:
		return &types.AttributeValueMemberBOOL{Value: v.Boolean()}
	case events.DataTypeNull:
		return &types.AttributeValueMemberNULL{Value: v.IsNull()}
	case events.DataTypeStringSet:
		return &types.AttributeValueMemberSS{Value: v.StringSet()}
	case events.DataTypeNumberSet:
		return &types.AttributeValueMemberNS{Value: v.NumberSet()}
	case events.DataTypeBinarySet:
		return &types.AttributeValueMemberBS{Value: v.BinarySet()}
	case events.DataTypeList:
		list := make([]types.AttributeValue, 0, len(v.List()))
		for _, item := range v.List() {
			if av := convertValue(item); av != nil {
				list = append(list, av)
			}
		}
		return &types.AttributeValueMemberL{Value: list}
	case events.DataTypeMap:
		m := make(map[string]types.AttributeValue, len(v.Map()))
		for k, item := range v.Map() {
			if av := convertValue(item); av != nil {
				m[k] = av
			}
		}
		return &types.AttributeValueMemberM{Value: m}
	}
	return nil
}
