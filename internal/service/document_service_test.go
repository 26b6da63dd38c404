package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkTextShortInput(t *testing.T) {
	chunks := chunkText("short text", 1000, 200)
	require.Equal(t, []string{"short text"}, chunks)
}

func TestChunkTextEmpty(t *testing.T) {
	require.Nil(t, chunkText("", 1000, 200))
	require.Nil(t, chunkText("   \n\t", 1000, 200))
}

func TestChunkTextOverlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 30) // 300 runes
	chunks := chunkText(text, 100, 20)
	require.True(t, len(chunks) >= 3)
	for _, chunk := range chunks {
		require.LessOrEqual(t, len([]rune(chunk)), 100)
	}
	// Consecutive chunks share the overlap region.
	first := []rune(chunks[0])
	second := []rune(chunks[1])
	require.Equal(t, string(first[80:]), string(second[:20]))
}

func TestMarkdownToPlainText(t *testing.T) {
	md := "# Auth Runbook\n\nRotate the **signing keys** monthly.\n\n```bash\nrotate-keys --env prod\n```\n\n- step one\n- step two\n"
	plain := markdownToPlainText(md)
	require.Contains(t, plain, "Auth Runbook")
	require.Contains(t, plain, "Rotate the signing keys monthly.")
	require.Contains(t, plain, "rotate-keys --env prod")
	require.NotContains(t, plain, "**")
	require.NotContains(t, plain, "```")
}

func TestMarkdownToPlainTextEmpty(t *testing.T) {
	require.Equal(t, "", markdownToPlainText(""))
	require.Equal(t, "", markdownToPlainText("  \n "))
}
