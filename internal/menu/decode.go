package menu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/apiclient"
)

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// getList reads a list that is either the data member itself or wrapped
// under key.
func getList[T any](ctx context.Context, api apiclient.API, path, key string) ([]T, error) {
	resp, err := api.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := resp.DecodeData(&raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		inner, ok := wrapped[key]
		if !ok {
			return nil, fmt.Errorf("decode %s: no %q list in reply", path, key)
		}
		raw = inner
	}
	out := []T{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func getOne[T any](ctx context.Context, api apiclient.API, path string) (T, error) {
	var out T
	resp, err := api.Get(ctx, path)
	if err != nil {
		return out, fmt.Errorf("get %s: %w", path, err)
	}
	if err := resp.DecodeData(&out); err != nil {
		return out, fmt.Errorf("get %s: %w", path, err)
	}
	return out, nil
}

// send issues a write and decodes the echoed record when there is one. An
// echo that does not decode is logged; the write itself succeeded.
func send[T any](ctx context.Context, logger *zap.Logger, call func(context.Context, string, any) (*apiclient.Response, error), path string, body any) (T, error) {
	var out T
	resp, err := call(ctx, path, body)
	if err != nil {
		return out, fmt.Errorf("write %s: %w", path, err)
	}
	if err := resp.DecodeData(&out); err != nil {
		logger.Warn("write reply not decoded", zap.String("path", path), zap.Error(err))
		var zero T
		out = zero
	}
	return out, nil
}

func remove(ctx context.Context, api apiclient.API, path string) error {
	if _, err := api.Delete(ctx, path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}
