package lexer

import (
	"testing"

	"github.com/blg-lang/blg/pkg/token"
)

func TestNext_Delimiters(t *testing.T) {
	input := `( ) [ ] { } , ; : =`
	want := []token.Type{
		token.LPAREN, token.RPAREN, token.LBRACKET, token.RBRACKET,
		token.LBRACE, token.RBRACE, token.COMMA, token.SEMI, token.COLON,
		token.ASSIGN, token.EOF,
	}
	l := New(input)
	for i, w := range want {
		tok := l.Next()
		if tok.Type != w {
			t.Fatalf("token %d: expected %s, got %s (%q)", i, w, tok.Type, tok.Literal)
		}
	}
}

func TestNext_Operators(t *testing.T) {
	input := `+ - * / == != < <= > >= <-`
	want := []token.Type{
		token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE,
		token.ARROW, token.EOF,
	}
	l := New(input)
	for i, w := range want {
		tok := l.Next()
		if tok.Type != w {
			t.Fatalf("token %d: expected %s, got %s (%q)", i, w, tok.Type, tok.Literal)
		}
	}
}

func TestNext_Keywords(t *testing.T) {
	input := "def if then do elif else while end and or not"
	want := []token.Type{
		token.DEF, token.IF, token.THEN, token.DO, token.ELIF, token.ELSE,
		token.WHILE, token.END, token.AND, token.OR, token.NOT, token.EOF,
	}
	l := New(input)
	for i, w := range want {
		tok := l.Next()
		if tok.Type != w {
			t.Fatalf("token %d: expected %s, got %s (%q)", i, w, tok.Type, tok.Literal)
		}
	}
}

func TestNext_IdentifierNotKeyword(t *testing.T) {
	l := New("define definitely")
	for _, want := range []string{"define", "definitely"} {
		tok := l.Next()
		if tok.Type != token.IDENT || tok.Literal != want {
			t.Fatalf("expected IDENT %q, got %s %q", want, tok.Type, tok.Literal)
		}
	}
}

func TestNext_Numbers(t *testing.T) {
	tests := []struct {
		input string
		typ   token.Type
		lit   string
	}{
		{"42", token.INT, "42"},
		{"0", token.INT, "0"},
		{"3.14", token.FLOAT, "3.14"},
		{"1e10", token.FLOAT, "1e10"},
		{"2.5e-3", token.FLOAT, "2.5e-3"},
		{"5e", token.INT, "5"}, // bare trailing 'e' with no digits is not an exponent
	}
	for _, tt := range tests {
		l := New(tt.input)
		tok := l.Next()
		if tok.Type != tt.typ || tok.Literal != tt.lit {
			t.Errorf("for %q: expected %s %q, got %s %q", tt.input, tt.typ, tt.lit, tok.Type, tok.Literal)
		}
	}
}

func TestNext_StringEscapes(t *testing.T) {
	l := New(`'hi\n\t\'there\''`)
	tok := l.Next()
	if tok.Type != token.STR {
		t.Fatalf("expected STR, got %s", tok.Type)
	}
	want := "hi\n\t'there'"
	if tok.Literal != want {
		t.Fatalf("expected %q, got %q", want, tok.Literal)
	}
}

func TestNext_UnterminatedString(t *testing.T) {
	l := New(`'oops`)
	tok := l.Next()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %s", tok.Type)
	}
}

func TestNext_CommentsSkipped(t *testing.T) {
	l := New("1 # this is a comment\n+ 2")
	types := []token.Type{token.INT, token.PLUS, token.INT, token.EOF}
	for _, want := range types {
		tok := l.Next()
		if tok.Type != want {
			t.Fatalf("expected %s, got %s", want, tok.Type)
		}
	}
}

func TestNext_LineColumnTracking(t *testing.T) {
	l := New("a\nb")
	first := l.Next()
	if first.Line != 1 {
		t.Fatalf("expected line 1, got %d", first.Line)
	}
	second := l.Next()
	if second.Line != 2 {
		t.Fatalf("expected line 2, got %d", second.Line)
	}
}

func TestTokenize_ReachesEOF(t *testing.T) {
	toks := Tokenize("x = 1 ;")
	if toks[len(toks)-1].Type != token.EOF {
		t.Fatalf("last token should be EOF, got %s", toks[len(toks)-1].Type)
	}
}
