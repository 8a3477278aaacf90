package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
)

// TestAnswerReceived tests the AnswerReceived message type
func TestAnswerReceived(t *testing.T) {
	t.Run("with answer", func(t *testing.T) {
		answer := &domain.Answer{
			Question: "what changed?",
			Text:     "The release notes changed.",
			Grounded: true,
		}
		msg := AnswerReceived{Answer: answer}

		require.NotNil(t, msg.Answer)
		assert.Equal(t, "what changed?", msg.Answer.Question)
		assert.True(t, msg.Answer.Grounded)
		assert.NoError(t, msg.Err)
	})

	t.Run("with error", func(t *testing.T) {
		err := errors.New("embed question: connection refused")
		msg := AnswerReceived{Err: err}

		assert.Nil(t, msg.Answer)
		assert.Equal(t, err, msg.Err)
	})

	t.Run("with low confidence answer", func(t *testing.T) {
		answer := &domain.Answer{
			Text:          "Possibly unrelated.",
			LowConfidence: true,
		}
		msg := AnswerReceived{Answer: answer}

		assert.True(t, msg.Answer.LowConfidence)
	})
}

// TestStatsLoaded tests the StatsLoaded message type
func TestStatsLoaded(t *testing.T) {
	t.Run("with stats", func(t *testing.T) {
		stats := []domain.CorpusStats{
			{Corpus: domain.CorpusLocal, Sources: 3, Chunks: 42},
			{Corpus: domain.CorpusDrive, Sources: 1, Chunks: 7},
		}
		msg := StatsLoaded{Stats: stats}

		require.Len(t, msg.Stats, 2)
		assert.Equal(t, domain.CorpusLocal, msg.Stats[0].Corpus)
		assert.Equal(t, 42, msg.Stats[0].Chunks)
		assert.NoError(t, msg.Err)
	})

	t.Run("with error", func(t *testing.T) {
		err := errors.New("count chunks: store unavailable")
		msg := StatsLoaded{Err: err}

		assert.Empty(t, msg.Stats)
		assert.Equal(t, err, msg.Err)
	})

	t.Run("empty stats", func(t *testing.T) {
		msg := StatsLoaded{Stats: []domain.CorpusStats{}}

		assert.Empty(t, msg.Stats)
	})
}

// TestQuit tests the Quit message type
func TestQuit(t *testing.T) {
	msg := Quit{}
	assert.NotNil(t, msg)
}
