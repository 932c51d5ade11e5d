package docker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCappedBuffer(t *testing.T) {
	tests := []struct {
		name   string
		limit  int
		writes []string
		want   string
	}{
		{name: "under limit", limit: 10, writes: []string{"abc", "def"}, want: "abcdef"},
		{name: "exact limit", limit: 6, writes: []string{"abc", "def"}, want: "abcdef"},
		{name: "splits a write", limit: 4, writes: []string{"abc", "def"}, want: "abcd" + truncatedNote},
		{name: "drops later writes", limit: 3, writes: []string{"abc", "def", "ghi"}, want: "abc" + truncatedNote},
		{name: "no limit", limit: 0, writes: []string{"abc", "def"}, want: "abcdef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newCappedBuffer(tt.limit)
			for _, w := range tt.writes {
				n, err := b.Write([]byte(w))
				assert.NoError(t, err)
				assert.Equal(t, len(w), n)
			}
			assert.Equal(t, tt.want, b.String())
		})
	}
}

func TestCappedBuffer_NoteBypassesLimit(t *testing.T) {
	b := newCappedBuffer(2)
	b.Write([]byte("abc"))
	b.note(timedOutNote)
	assert.Equal(t, "ab"+timedOutNote+truncatedNote, b.String())
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0123456789ab", shortID("0123456789abcdef"))
	assert.Equal(t, "abc", shortID("abc"))
}
