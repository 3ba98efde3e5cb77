package stream_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/lattice/coerce"
	"github.com/jacentio/lattice/model"
	"github.com/jacentio/lattice/stream"
)

func accountRegistry() (*model.Registry, *model.Definition) {
	def := model.Define("account", "accounts").
		Field("email", coerce.String).
		Field("visits", coerce.Integer)
	reg := model.NewRegistry()
	reg.Register(def)
	return reg, def
}

func accountImage(id, email string) map[string]events.DynamoDBAttributeValue {
	return map[string]events.DynamoDBAttributeValue{
		"id":     events.NewStringAttribute(id),
		"type":   events.NewStringAttribute("account"),
		"email":  events.NewStringAttribute(email),
		"visits": events.NewNumberAttribute("7"),
	}
}

// --- ConvertImage Tests ---

func TestConvertImage_ScalarTypes(t *testing.T) {
	item := stream.ConvertImage(map[string]events.DynamoDBAttributeValue{
		"s":    events.NewStringAttribute("text"),
		"n":    events.NewNumberAttribute("42"),
		"b":    events.NewBooleanAttribute(true),
		"null": events.NewNullAttribute(),
		"bin":  events.NewBinaryAttribute([]byte{0x01}),
	})

	if v, ok := item["s"].(*types.AttributeValueMemberS); !ok || v.Value != "text" {
		t.Errorf("expected S, got %v", item["s"])
	}
	if v, ok := item["n"].(*types.AttributeValueMemberN); !ok || v.Value != "42" {
		t.Errorf("expected N, got %v", item["n"])
	}
	if v, ok := item["b"].(*types.AttributeValueMemberBOOL); !ok || !v.Value {
		t.Errorf("expected BOOL, got %v", item["b"])
	}
	if v, ok := item["null"].(*types.AttributeValueMemberNULL); !ok || !v.Value {
		t.Errorf("expected NULL, got %v", item["null"])
	}
	if v, ok := item["bin"].(*types.AttributeValueMemberB); !ok || len(v.Value) != 1 {
		t.Errorf("expected B, got %v", item["bin"])
	}
}

func TestConvertImage_Sets(t *testing.T) {
	item := stream.ConvertImage(map[string]events.DynamoDBAttributeValue{
		"ss": events.NewStringSetAttribute([]string{"a", "b"}),
		"ns": events.NewNumberSetAttribute([]string{"1", "2"}),
	})

	if v, ok := item["ss"].(*types.AttributeValueMemberSS); !ok || len(v.Value) != 2 {
		t.Errorf("expected SS, got %v", item["ss"])
	}
	if v, ok := item["ns"].(*types.AttributeValueMemberNS); !ok || len(v.Value) != 2 {
		t.Errorf("expected NS, got %v", item["ns"])
	}
}

func TestConvertImage_Nested(t *testing.T) {
	item := stream.ConvertImage(map[string]events.DynamoDBAttributeValue{
		"list": events.NewListAttribute([]events.DynamoDBAttributeValue{
			events.NewStringAttribute("a"),
			events.NewNumberAttribute("1"),
		}),
		"map": events.NewMapAttribute(map[string]events.DynamoDBAttributeValue{
			"inner": events.NewBooleanAttribute(false),
		}),
	})

	list, ok := item["list"].(*types.AttributeValueMemberL)
	if !ok || len(list.Value) != 2 {
		t.Fatalf("expected L with 2 entries, got %v", item["list"])
	}
	if v, ok := list.Value[0].(*types.AttributeValueMemberS); !ok || v.Value != "a" {
		t.Errorf("expected nested S, got %v", list.Value[0])
	}

	m, ok := item["map"].(*types.AttributeValueMemberM)
	if !ok {
		t.Fatalf("expected M, got %v", item["map"])
	}
	if v, ok := m.Value["inner"].(*types.AttributeValueMemberBOOL); !ok || v.Value {
		t.Errorf("expected nested BOOL false, got %v", m.Value["inner"])
	}
}

// --- Handler Tests ---

func TestHandler_HydratesNewImage(t *testing.T) {
	reg, _ := accountRegistry()

	var gotEvent string
	var gotRec *model.Record
	h := stream.NewHandler(reg, func(ctx context.Context, eventName string, rec *model.Record) error {
		gotEvent = eventName
		gotRec = rec
		return nil
	}, nil)

	err := h.Handle(context.Background(), events.DynamoDBEvent{
		Records: []events.DynamoDBEventRecord{{
			EventID:   "1",
			EventName: "INSERT",
			Change: events.DynamoDBStreamRecord{
				NewImage: accountImage("abc", "a@example.com"),
			},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotEvent != "INSERT" {
		t.Errorf("expected INSERT, got %q", gotEvent)
	}
	if gotRec == nil {
		t.Fatal("expected hydrated record")
	}
	if v, _ := gotRec.Get("visits"); v != int64(7) {
		t.Errorf("expected loaded integer, got %v", v)
	}
	if len(gotRec.ChangedFields()) != 0 {
		t.Errorf("expected clean record, got %v", gotRec.ChangedFields())
	}
}

func TestHandler_RemoveUsesOldImage(t *testing.T) {
	reg, _ := accountRegistry()

	var gotRec *model.Record
	h := stream.NewHandler(reg, func(ctx context.Context, eventName string, rec *model.Record) error {
		gotRec = rec
		return nil
	}, nil)

	err := h.Handle(context.Background(), events.DynamoDBEvent{
		Records: []events.DynamoDBEventRecord{{
			EventID:   "1",
			EventName: "REMOVE",
			Change: events.DynamoDBStreamRecord{
				OldImage: accountImage("abc", "old@example.com"),
			},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotRec == nil {
		t.Fatal("expected record from old image")
	}
	if v, _ := gotRec.Get("email"); v != "old@example.com" {
		t.Errorf("expected old image email, got %v", v)
	}
}

func TestHandler_SkipsUnregisteredType(t *testing.T) {
	reg, _ := accountRegistry()

	called := false
	h := stream.NewHandler(reg, func(ctx context.Context, eventName string, rec *model.Record) error {
		called = true
		return nil
	}, nil)

	image := accountImage("abc", "a@example.com")
	image["type"] = events.NewStringAttribute("unknown")

	err := h.Handle(context.Background(), events.DynamoDBEvent{
		Records: []events.DynamoDBEventRecord{{
			EventID:   "1",
			EventName: "INSERT",
			Change:    events.DynamoDBStreamRecord{NewImage: image},
		}},
	})
	if err != nil {
		t.Fatalf("expected skip, got error: %v", err)
	}
	if called {
		t.Error("expected callback not invoked for unregistered type")
	}
}

func TestHandler_SkipsEmptyImage(t *testing.T) {
	reg, _ := accountRegistry()

	called := false
	h := stream.NewHandler(reg, func(ctx context.Context, eventName string, rec *model.Record) error {
		called = true
		return nil
	}, nil)

	err := h.Handle(context.Background(), events.DynamoDBEvent{
		Records: []events.DynamoDBEventRecord{{EventID: "1", EventName: "INSERT"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("expected callback not invoked for empty image")
	}
}

func TestHandler_CallbackErrorStopsBatch(t *testing.T) {
	reg, _ := accountRegistry()

	boom := errors.New("downstream failure")
	calls := 0
	h := stream.NewHandler(reg, func(ctx context.Context, eventName string, rec *model.Record) error {
		calls++
		return boom
	}, nil)

	err := h.Handle(context.Background(), events.DynamoDBEvent{
		Records: []events.DynamoDBEventRecord{
			{EventID: "1", EventName: "INSERT", Change: events.DynamoDBStreamRecord{NewImage: accountImage("a", "a@example.com")}},
			{EventID: "2", EventName: "INSERT", Change: events.DynamoDBStreamRecord{NewImage: accountImage("b", "b@example.com")}},
		},
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected callback error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected batch stopped after first failure, got %d calls", calls)
	}
}

// --- STI dispatch ---

func TestHandler_DispatchesHierarchy(t *testing.T) {
	base := model.Define("vehicle", "vehicles").
		Field("wheels", coerce.Integer)
	car := base.Extend("car").
		Field("doors", coerce.Integer)

	reg := model.NewRegistry()
	reg.Register(base)
	reg.Register(car)

	var gotType string
	h := stream.NewHandler(reg, func(ctx context.Context, eventName string, rec *model.Record) error {
		gotType = rec.Definition().Name()
		return nil
	}, nil)

	err := h.Handle(context.Background(), events.DynamoDBEvent{
		Records: []events.DynamoDBEventRecord{{
			EventID:   "1",
			EventName: "MODIFY",
			Change: events.DynamoDBStreamRecord{
				NewImage: map[string]events.DynamoDBAttributeValue{
					"id":     events.NewStringAttribute("c1"),
					"type":   events.NewStringAttribute("car"),
					"wheels": events.NewNumberAttribute("4"),
					"doors":  events.NewNumberAttribute("2"),
				},
			},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotType != "car" {
		t.Errorf("expected dispatch to car definition, got %q", gotType)
	}
}
