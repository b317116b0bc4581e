// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSingletonCapture(t *testing.T) { //nolint:paralleltest // swaps the singleton
	core, logs := observer.New(zap.DebugLevel)
	old := Get()
	Set(zap.New(core).Sugar())
	defer Set(old)

	Infof("hello %s", "world")
	Warnw("careful", "path", "/call")
	Debug("noise")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "hello world", entries[0].Message)
	assert.Equal(t, "careful", entries[1].Message)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}

func TestUnstructuredLogsDefault(t *testing.T) { //nolint:paralleltest // reads env
	t.Setenv("UNSTRUCTURED_LOGS", "")
	assert.True(t, unstructuredLogs())

	t.Setenv("UNSTRUCTURED_LOGS", "false")
	assert.False(t, unstructuredLogs())

	t.Setenv("UNSTRUCTURED_LOGS", "true")
	assert.True(t, unstructuredLogs())
}
