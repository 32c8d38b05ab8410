package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ChunkConfig
		wantErr bool
	}{
		{"default", DefaultChunkConfig(), false},
		{"no overlap", ChunkConfig{Size: 10, Overlap: 0}, false},
		{"zero size", ChunkConfig{Size: 0, Overlap: 0}, true},
		{"negative overlap", ChunkConfig{Size: 10, Overlap: -1}, true},
		{"overlap equals size", ChunkConfig{Size: 10, Overlap: 10}, true},
		{"overlap exceeds size", ChunkConfig{Size: 10, Overlap: 20}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChunkText(t *testing.T) {
	t.Run("empty text yields nothing", func(t *testing.T) {
		assert.Empty(t, ChunkAll("", DefaultChunkConfig()))
	})

	t.Run("short text is a single chunk", func(t *testing.T) {
		chunks := ChunkAll("The capital of France is Paris.", DefaultChunkConfig())
		require.Len(t, chunks, 1)
		assert.Equal(t, "The capital of France is Paris.", chunks[0])
	})

	t.Run("default window over 2000 characters", func(t *testing.T) {
		text := strings.Repeat("a", 2000)
		chunks := ChunkAll(text, DefaultChunkConfig())
		require.Len(t, chunks, 3)
		assert.Len(t, []rune(chunks[0]), 800)
		assert.Len(t, []rune(chunks[1]), 800)
		// windows start at 0, 650 and 1300; the 50 runes after 1950 are overlap
		assert.Len(t, []rune(chunks[2]), 700)
	})

	t.Run("text exactly one window long", func(t *testing.T) {
		chunks := ChunkAll(strings.Repeat("b", 800), DefaultChunkConfig())
		assert.Len(t, chunks, 1)
	})

	t.Run("remainder within overlap is not emitted", func(t *testing.T) {
		// second window is 650..1450; the next cursor 1300 leaves exactly 150
		chunks := ChunkAll(strings.Repeat("c", 1450), DefaultChunkConfig())
		require.Len(t, chunks, 2)
		assert.Len(t, []rune(chunks[1]), 800)
	})

	t.Run("remainder beyond overlap is emitted", func(t *testing.T) {
		chunks := ChunkAll(strings.Repeat("c", 950), DefaultChunkConfig())
		require.Len(t, chunks, 2)
		assert.Len(t, []rune(chunks[1]), 300)
	})

	t.Run("windows overlap by the configured amount", func(t *testing.T) {
		text := "abcdefghijklmnopqrstuvwxyz"
		chunks := ChunkAll(text, ChunkConfig{Size: 10, Overlap: 3})
		require.Len(t, chunks, 4)
		assert.Equal(t, "abcdefghij", chunks[0])
		assert.Equal(t, "hijklmnopq", chunks[1])
		assert.Equal(t, "opqrstuvwx", chunks[2])
		// cursor 21 leaves 5 runes, more than the overlap of 3
		assert.Equal(t, "vwxyz", chunks[3])
		assert.Equal(t, chunks[0][7:], chunks[1][:3])
	})

	t.Run("counts runes not bytes", func(t *testing.T) {
		text := strings.Repeat("é", 25)
		chunks := ChunkAll(text, ChunkConfig{Size: 10, Overlap: 0})
		require.Len(t, chunks, 3)
		assert.Equal(t, strings.Repeat("é", 10), chunks[0])
		assert.Equal(t, strings.Repeat("é", 5), chunks[2])
	})

	t.Run("sequence is restartable and deterministic", func(t *testing.T) {
		seq := ChunkText(strings.Repeat("xyz ", 500), DefaultChunkConfig())
		var first, second []string
		for c := range seq {
			first = append(first, c)
		}
		for c := range seq {
			second = append(second, c)
		}
		assert.Equal(t, first, second)
		assert.NotEmpty(t, first)
	})

	t.Run("early break stops iteration", func(t *testing.T) {
		n := 0
		for range ChunkText(strings.Repeat("a", 5000), DefaultChunkConfig()) {
			n++
			if n == 2 {
				break
			}
		}
		assert.Equal(t, 2, n)
	})

	t.Run("invalid config falls back to defaults", func(t *testing.T) {
		text := strings.Repeat("a", 2000)
		assert.Equal(t, ChunkAll(text, DefaultChunkConfig()), ChunkAll(text, ChunkConfig{Size: 5, Overlap: 9}))
	})
}

func TestChunkText_CoversWholeText(t *testing.T) {
	cfg := ChunkConfig{Size: 50, Overlap: 10}
	for _, n := range []int{1, 10, 49, 50, 51, 90, 91, 137, 1000} {
		text := []rune(strings.Repeat("0123456789", 100))[:n]
		chunks := ChunkAll(string(text), cfg)
		require.NotEmpty(t, chunks, "length %d", n)

		var rebuilt []rune
		for i, c := range chunks {
			r := []rune(c)
			if i > 0 {
				r = r[cfg.Overlap:]
			}
			rebuilt = append(rebuilt, r...)
		}
		assert.Equal(t, string(text), string(rebuilt), "length %d", n)
	}
}
