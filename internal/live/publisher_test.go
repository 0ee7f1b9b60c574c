package live

import (
	"strings"
	"testing"
)

func TestSplitMessage_Reassembles(t *testing.T) {
	text := "Walk me through how you would design a rate limiter for a public API " +
		"used by a Backend Engineer, covering storage, eviction and failure modes in detail."

	chunks := SplitMessage(text, chunkGroups)

	var b strings.Builder
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Fatalf("expected index %d, got %d", i, chunk.Index)
		}
		b.WriteString(chunk.Text)
	}
	if b.String() != text {
		t.Fatalf("concatenated chunks differ from original:\n%q\n%q", b.String(), text)
	}
}

func TestSplitMessage_LastChunk(t *testing.T) {
	text := "one two three four five six seven eight nine ten eleven twelve"
	chunks := SplitMessage(text, chunkGroups)

	if len(chunks) > chunkGroups {
		t.Fatalf("expected at most %d chunks, got %d", chunkGroups, len(chunks))
	}
	for i, chunk := range chunks[:len(chunks)-1] {
		if chunk.IsLast {
			t.Fatalf("chunk %d flagged last", i)
		}
		if chunk.FullContent != "" {
			t.Fatalf("chunk %d carries full content", i)
		}
	}

	last := chunks[len(chunks)-1]
	if !last.IsLast {
		t.Fatal("final chunk not flagged last")
	}
	if last.FullContent != text {
		t.Fatalf("final chunk full content mismatch: %q", last.FullContent)
	}
}

func TestSplitMessage_ShortText(t *testing.T) {
	chunks := SplitMessage("hello there", chunkGroups)

	// Fewer words than groups still yields one chunk per word, never empty
	// chunks.
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if !chunks[1].IsLast || chunks[1].FullContent != "hello there" {
		t.Fatalf("unexpected final chunk: %#v", chunks[1])
	}
}

func TestSplitMessage_Empty(t *testing.T) {
	chunks := SplitMessage("", chunkGroups)
	if len(chunks) != 1 || !chunks[0].IsLast {
		t.Fatalf("expected a single terminal chunk, got %#v", chunks)
	}
}
