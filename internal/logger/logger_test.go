package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_AddsRequestAndUserID(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)
	t.Cleanup(func() { Init("development") })

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "user-42")
	CtxInfo(ctx, "hello", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "user-42", line["user_id"])
	assert.Equal(t, "v", line["k"])
}

func TestFromContext_EmptyContext(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)
	t.Cleanup(func() { Init("development") })

	CtxWarn(context.Background(), "plain")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.NotContains(t, line, "request_id")
	assert.Equal(t, "WARN", line["level"])
}
