package textsplit

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitter_ShortTextIsSingleChunk(t *testing.T) {
	s := NewSplitter(DefaultChunkSize, DefaultChunkOverlap)

	chunks, err := s.Split("Mateo also uses AmazonQ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mateo also uses AmazonQ"}, chunks)
}

func TestSplitter_LongTextRespectsChunkSize(t *testing.T) {
	s := NewSplitter(200, 20)

	paragraph := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 3)
	text := strings.Repeat(paragraph+"\n\n", 10)

	chunks, err := s.Split(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 200)
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestSplitter_BlankText(t *testing.T) {
	chunks, err := NewSplitter(0, 0).Split(" \n\n ")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplitter_SplitDocumentsAddsMetadata(t *testing.T) {
	s := NewSplitter(60, 0)

	docs, err := s.SplitDocuments("notes.txt", "Katerina does not know python programming.\n\nHowever she uses AmazonQ to do it!")
	require.NoError(t, err)
	require.Len(t, docs, 2)

	for i, doc := range docs {
		assert.Equal(t, "notes.txt", doc.Metadata[MetadataSource])
		assert.Equal(t, []string{"0", "1"}[i], doc.Metadata[MetadataChunk])
		assert.Empty(t, doc.ID)
	}
	assert.Equal(t, "Katerina does not know python programming.", docs[0].Content)
}

func TestNewSplitter_InvalidOverlapFallsBack(t *testing.T) {
	s := NewSplitter(100, 150)
	assert.Equal(t, 100, s.splitter.ChunkSize)
	assert.Equal(t, 50, s.splitter.ChunkOverlap)
}
