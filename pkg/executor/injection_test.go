package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInjectionScanWarnsOnSuspiciousStrings(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	client := NewClient(&fakeDB{}, zap.New(core))

	client.warnOnInjectionPatterns([]any{
		int64(1),
		"1' OR '1'='1",
	})

	entries := logs.All()
	assert.NotEmpty(t, entries)
	assert.Equal(t, "SQL injection pattern in bound parameter", entries[0].Message)
	assert.Equal(t, int64(2), entries[0].ContextMap()["position"])
}

func TestInjectionScanIgnoresBenignStrings(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	client := NewClient(&fakeDB{}, zap.New(core))

	client.warnOnInjectionPatterns([]any{
		"ada",
		"a perfectly ordinary note",
		true,
		nil,
	})

	assert.Zero(t, logs.Len())
}
