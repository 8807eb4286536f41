package music

import (
	"fmt"
	"regexp"
	"strings"
)

// Token is one element of a NameTemplate. Key is the canonical tag key
// for lookup tokens and empty for literals; Text holds the original
// token text, rendered verbatim for literals and used as the fallback
// when a lookup finds nothing.
type Token struct {
	Key  string
	Text string
}

// NameTemplate renders a relative library path from a TagRecord.
type NameTemplate struct {
	tokens []Token
}

var tokenPattern = regexp.MustCompile(`\{([A-Za-z0-9_-]+)\}`)

// ParseTemplate parses the brace syntax, e.g.
// "{ALBUMARTIST}/{ALBUM}/{TRACKNUMBER}. {TITLE}". Brace groups become
// lookup tokens, everything between them literals.
func ParseTemplate(s string) (NameTemplate, error) {
	if strings.TrimSpace(s) == "" {
		return NameTemplate{}, fmt.Errorf("template is empty")
	}
	var tokens []Token
	last := 0
	for _, loc := range tokenPattern.FindAllStringSubmatchIndex(s, -1) {
		if loc[0] > last {
			tokens = append(tokens, Token{Text: s[last:loc[0]]})
		}
		text := s[loc[2]:loc[3]]
		tokens = append(tokens, Token{Key: strings.ToUpper(text), Text: text})
		last = loc[1]
	}
	if last < len(s) {
		tokens = append(tokens, Token{Text: s[last:]})
	}
	return NameTemplate{tokens: tokens}, nil
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// TemplateFromTokens builds a template from a plain token list, e.g.
// ["ALBUMARTIST", "/", "ALBUM", "/", "TRACKNUMBER", ". ", "TITLE"].
// Tokens shaped like tag keys become lookup tokens; the rest literals.
func TemplateFromTokens(tokens []string) (NameTemplate, error) {
	if len(tokens) == 0 {
		return NameTemplate{}, fmt.Errorf("template is empty")
	}
	out := make([]Token, 0, len(tokens))
	for _, text := range tokens {
		if keyPattern.MatchString(text) {
			out = append(out, Token{Key: strings.ToUpper(text), Text: text})
			continue
		}
		out = append(out, Token{Text: text})
	}
	return NameTemplate{tokens: out}, nil
}

// Tokens returns a copy of the token list.
func (t NameTemplate) Tokens() []Token {
	out := make([]Token, len(t.tokens))
	copy(out, t.tokens)
	return out
}

// Render assembles the path. Lookup tokens whose value is missing or
// empty fall back to their own text. Values pass through transform when
// non-nil, then every illegal filename character inside a value is
// replaced with '_' so a tag can never introduce a directory level or
// an unwritable name. Literal separators keep their meaning.
func (t NameTemplate) Render(record *TagRecord, transform func(string) string) string {
	var b strings.Builder
	for _, tok := range t.tokens {
		if tok.Key == "" || !record.Has(tok.Key) {
			b.WriteString(tok.Text)
			continue
		}
		val := record.Get(tok.Key)
		if transform != nil {
			val = transform(val)
		}
		b.WriteString(SanitizeValue(val))
	}
	return b.String()
}

// String reassembles the brace syntax.
func (t NameTemplate) String() string {
	var b strings.Builder
	for _, tok := range t.tokens {
		if tok.Key != "" {
			b.WriteString("{" + tok.Text + "}")
			continue
		}
		b.WriteString(tok.Text)
	}
	return b.String()
}
