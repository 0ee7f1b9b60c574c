package live

import (
	"strings"
	"time"

	"jobmate/interview/internal/models"
)

// chunkGroups is how many word-groups a streamed message is split into.
const chunkGroups = 10

// SplitMessage splits text into up to groups roughly equal word-groups for
// incremental delivery. The final chunk is flagged IsLast and carries the
// full untruncated text so the client can reconcile its reassembled copy.
func SplitMessage(text string, groups int) []models.ChunkPayload {
	words := strings.Fields(text)
	if len(words) == 0 || groups < 1 {
		return []models.ChunkPayload{{Index: 0, Text: text, IsLast: true, FullContent: text}}
	}

	groupSize := (len(words) + groups - 1) / groups
	chunks := []models.ChunkPayload{}
	for start := 0; start < len(words); start += groupSize {
		end := start + groupSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, models.ChunkPayload{
			Index: len(chunks),
			Text:  strings.Join(words[start:end], " ") + " ",
		})
	}

	last := &chunks[len(chunks)-1]
	last.Text = strings.TrimSuffix(last.Text, " ")
	last.IsLast = true
	last.FullContent = text
	return chunks
}

// streamMessage delivers one logical message as ordered chunk frames with a
// fixed small delay between them. It runs on the session's worker goroutine,
// so chunks of one message are never interleaved with a later message on the
// same connection.
func (o *Orchestrator) streamMessage(c *Conn, sessionID, chunkType, text string) {
	chunks := SplitMessage(text, chunkGroups)
	for i, chunk := range chunks {
		if err := c.Send(newMessage(chunkType, sessionID, chunk)); err != nil {
			return
		}
		if o.chunkDelay > 0 && i < len(chunks)-1 {
			time.Sleep(o.chunkDelay)
		}
	}
}
