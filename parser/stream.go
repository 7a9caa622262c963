package parser

import (
	"github.com/pontaoski/brace/errors"
	"github.com/pontaoski/brace/types"
)

// stream walks a token slice the way the parser used to walk the lexer.
type stream struct {
	toks []types.Token
	idx  int
	last types.Token
}

func newStream(toks []types.Token) *stream {
	if len(toks) == 0 || toks[len(toks)-1].Kind != types.EOF {
		var at types.Span
		if len(toks) > 0 {
			at = types.SingleCharSpan(toks[len(toks)-1].Location.To)
		}
		toks = append(toks, types.Token{Kind: types.EOF, Location: at})
	}
	return &stream{toks: toks}
}

func (s *stream) Peek() types.Token {
	return s.toks[s.idx]
}

func (s *stream) PeekN(n int) types.Token {
	if s.idx+n >= len(s.toks) {
		return s.toks[len(s.toks)-1]
	}
	return s.toks[s.idx+n]
}

func (s *stream) PeekIs(k ...types.TokenKind) bool {
	token := s.Peek()
	for _, kind := range k {
		if token.Kind == kind {
			return true
		}
	}

	return false
}

func (s *stream) Lex() types.Token {
	tok := s.toks[s.idx]
	if tok.Kind != types.EOF {
		s.idx++
	}
	s.last = tok
	return tok
}

func (s *stream) LexExpecting(k ...types.TokenKind) types.Token {
	token := s.Lex()
	for _, kind := range k {
		if token.Kind == kind {
			return token
		}
	}

	panic(errors.ExpectedOneOfKindGotKind{
		Expected: k,
		Got:      token,
		Location: token.Location,
	})
}

// pos is the end of the most recently consumed token.
func (s *stream) pos() types.Position {
	return s.last.Location.To
}
