package main

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppRuleModeWithFileAudit(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	a, err := newApp(ctx, AppConfig{
		Mode:            modeRule,
		AuditSinks:      []string{" file "},
		AuditDir:        dir,
		AuditBufferSize: 16,
	})
	require.NoError(t, err)

	resp, err := a.orchestrator.HandleTurn(ctx, "cli-1", "transfer 10 from 111111 to 222222")
	require.NoError(t, err)
	assert.Contains(t, resp.Reply(), "Transfer initiated")
	require.NoError(t, a.Close(ctx))

	f, err := os.Open(filepath.Join(dir, "session_cli-1.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
	}
	assert.Greater(t, lines, 2)
}

func TestNewAppRejectsUnknownSettings(t *testing.T) {
	ctx := context.Background()

	_, err := newApp(ctx, AppConfig{Mode: "quantum"})
	assert.ErrorContains(t, err, "unknown agent mode")

	_, err = newApp(ctx, AppConfig{Mode: modeRule, AuditSinks: []string{"kafka"}})
	assert.ErrorContains(t, err, "unknown audit backend")
}

func TestNewAppWithoutAudit(t *testing.T) {
	a, err := newApp(context.Background(), AppConfig{Mode: modeRule})
	require.NoError(t, err)
	assert.Empty(t, a.closers)
}

func TestChatLoop(t *testing.T) {
	a, err := newApp(context.Background(), AppConfig{Mode: modeRule})
	require.NoError(t, err)

	in := strings.NewReader("Please replace my card\n\ncredit, ship to 123 Main St, it's lost\nexit\nnever read\n")
	var out strings.Builder
	require.NoError(t, chatLoop(context.Background(), a.orchestrator, "cli-2", in, &out))

	got := out.String()
	assert.Contains(t, got, "Session cli-2.")
	assert.Contains(t, got, "(missing: card_type, delivery_address, reason)")
	assert.Contains(t, got, "Your card replacement request is submitted.")
	assert.NotContains(t, got, "never read")
}
