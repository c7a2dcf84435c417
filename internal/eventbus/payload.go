package eventbus

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// EncodePayload сериализует поля события в protobuf (structpb.Struct).
// Допустимы значения, которые понимает structpb.NewValue.
func EncodePayload(fields map[string]any) ([]byte, error) {
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	data, err := proto.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return data, nil
}

// DecodePayload разбирает полезную нагрузку, созданную EncodePayload
func DecodePayload(data []byte) (map[string]any, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return st.AsMap(), nil
}

// NewEnvelope собирает конверт с новым UUID и сериализованной нагрузкой
func NewEnvelope(source, eventType string, priority int, fields map[string]any) (*Envelope, error) {
	payload, err := EncodePayload(fields)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: eventType,
		Version:   1,
		Priority:  priority,
		Payload:   payload,
	}, nil
}
