package pagecache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Encode adapts a typed generator to a GenerateFunc.
func Encode[T any](gen func(ctx context.Context) (T, error)) GenerateFunc {
	return func(ctx context.Context) ([]byte, error) {
		v, err := gen(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal props: %w", err)
		}
		return data, nil
	}
}

// Decode unmarshals cached props.
func Decode[T any](data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("unmarshal props: %w", err)
	}
	return v, nil
}

// Load is Get for typed props.
func Load[T any](ctx context.Context, c *Cache, key string, window time.Duration, gen func(ctx context.Context) (T, error)) (T, Status, error) {
	data, status, err := c.Get(ctx, key, window, Encode(gen))
	if err != nil {
		var zero T
		return zero, status, err
	}
	v, err := Decode[T](data)
	return v, status, err
}
