// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package errutil_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scmprops/scmprops/pkg/errutil"
)

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("PROPERTY_STORE_FAILED").
		With("repository_id", "r1").
		Errorf("write failed")

	errutil.LogError(logger, "operation failed", err)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "ERROR", logEntry["level"])
	assert.Equal(t, "operation failed", logEntry["msg"])
	assert.Equal(t, "PROPERTY_STORE_FAILED", logEntry["code"])
	assert.Equal(t, map[string]any{"repository_id": "r1"}, logEntry["context"])
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(logger, "operation failed", errors.New("standard error"))

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "ERROR", logEntry["level"])
	assert.Contains(t, logEntry["error"], "standard error")
	assert.NotContains(t, logEntry, "code")
}

func TestCode(t *testing.T) {
	assert.Equal(t, "X", errutil.Code(oops.Code("X").Errorf("x")))
	assert.Equal(t, "X", errutil.Code(oops.With("k", "v").Wrap(oops.Code("X").Errorf("x"))))
	assert.Empty(t, errutil.Code(errors.New("plain")))
}

type ctxKey struct{}

type ctxHandler struct {
	slog.Handler
	seen *any
}

func (h ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	*h.seen = ctx.Value(ctxKey{})
	return h.Handler.Handle(ctx, r)
}

func TestLogErrorContext_PassesContextToHandler(t *testing.T) {
	var buf bytes.Buffer
	var seen any
	logger := slog.New(ctxHandler{Handler: slog.NewJSONHandler(&buf, nil), seen: &seen})
	ctx := context.WithValue(context.Background(), ctxKey{}, "request-1")

	errutil.LogErrorContext(ctx, logger, "handler failed", oops.Code("INDEX_STORE_FAILED").Errorf("down"))

	assert.Equal(t, "request-1", seen)
	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "INDEX_STORE_FAILED", logEntry["code"])
}
