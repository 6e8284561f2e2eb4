// Package codec converts values to and from their stored byte form.
package codec

import (
	"encoding/json"
	"fmt"
)

type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSON is the default codec.
var JSON Codec = JSONCodec{}

type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json marshal %T: %w", v, err)
	}
	return b, nil
}

func (JSONCodec) Unmarshal(b []byte, v any) error {
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("json unmarshal %T: %w", v, err)
	}
	return nil
}

// IndentJSONCodec writes human readable JSON.
type IndentJSONCodec struct{}

func (IndentJSONCodec) Marshal(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json marshal %T: %w", v, err)
	}
	return b, nil
}

func (IndentJSONCodec) Unmarshal(b []byte, v any) error { return JSONCodec{}.Unmarshal(b, v) }
