package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTermQueryNumTerms(t *testing.T) {
	q := &TermQuery{Field: "title", Value: "hello"}
	require.Equal(t, 1, q.NumTerms())
}

func TestMultiTermQueryNumTerms(t *testing.T) {
	q := &MultiTermQuery{Terms: []TermQuery{
		{Field: "title", Value: "hello"},
		{Field: "author", Value: "hello"},
	}}
	require.Equal(t, 2, q.NumTerms())
}

func TestStandardQueryNumTerms(t *testing.T) {
	sq := &StandardQuery{MultiTerm: &MultiTermQuery{Terms: []TermQuery{{Field: "text", Value: "a"}}}}
	require.Equal(t, 1, sq.NumTerms())

	empty := &StandardQuery{}
	require.Equal(t, 0, empty.NumTerms())
}
