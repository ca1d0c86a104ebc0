package analysis

import "testing"

func collect(ts TokenStream) []string {
	var out []string
	for ts.Next() {
		out = append(out, ts.Token())
	}
	return out
}

func TestStandardTokenizer(t *testing.T) {
	tok := NewStandardTokenizer()
	got := collect(tok.Tokenize("Hello, World! 123"))
	want := []string{"hello", "world", "123"}
	if !equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestStandardTokenizerUnicode(t *testing.T) {
	tok := NewStandardTokenizer()
	got := collect(tok.Tokenize("タンタイビーって早い"))
	if len(got) == 0 {
		t.Fatalf("expected at least one CJK token, got none")
	}
}

func TestStandardTokenizerEmpty(t *testing.T) {
	tok := NewStandardTokenizer()
	if got := collect(tok.Tokenize("")); got != nil {
		t.Fatalf("expected no tokens, got %v", got)
	}
	if got := collect(tok.Tokenize("   ---   ")); got != nil {
		t.Fatalf("expected no tokens, got %v", got)
	}
}

func TestWhitespaceTokenizer(t *testing.T) {
	tok := NewWhitespaceTokenizer()
	got := collect(tok.Tokenize("  Hello   World  "))
	want := []string{"Hello", "World"}
	if !equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestKeywordTokenizer(t *testing.T) {
	tok := NewKeywordTokenizer()
	got := collect(tok.Tokenize("New York"))
	want := []string{"New York"}
	if !equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if got := collect(tok.Tokenize("")); got != nil {
		t.Fatalf("expected no tokens for empty input, got %v", got)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Get(Standard); err != nil {
		t.Fatalf("Get(standard): %v", err)
	}
	if _, err := r.Get("nonexistent"); err == nil {
		t.Fatalf("expected error for unknown tokenizer")
	}

	if err := r.Register("custom", NewKeywordTokenizer()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register("custom", NewKeywordTokenizer()); err == nil {
		t.Fatalf("expected error registering duplicate name")
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
