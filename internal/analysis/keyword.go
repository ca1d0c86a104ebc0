package analysis

// KeywordTokenizer yields the entire input as a single token.
type KeywordTokenizer struct{}

// NewKeywordTokenizer creates a new KeywordTokenizer.
func NewKeywordTokenizer() *KeywordTokenizer {
	return &KeywordTokenizer{}
}

// Tokenize returns a TokenStream over text.
func (t *KeywordTokenizer) Tokenize(text string) TokenStream {
	return &keywordTokenStream{text: text, done: text == ""}
}

type keywordTokenStream struct {
	text string
	done bool
}

func (s *keywordTokenStream) Next() bool {
	if s.done {
		return false
	}
	s.done = true
	return true
}

func (s *keywordTokenStream) Token() string { return s.text }
