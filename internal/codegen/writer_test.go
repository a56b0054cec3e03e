package codegen

import "testing"

func TestRustWriterLineIndentsByCurrentDepth(t *testing.T) {
	w := NewRustWriter()
	w.Line("top")
	w.OpenBlock("fn f()")
	w.Line("inner")
	w.CloseBlock()

	want := "top\nfn f() {\n    inner\n}\n"
	if got := w.String(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRustWriterElseBlockKeepsIndentationNetUnchanged(t *testing.T) {
	w := NewRustWriter()
	w.OpenBlock("if cond")
	w.Line("a")
	w.ElseBlock()
	w.Line("b")
	w.CloseBlock()

	want := "if cond {\n    a\n} else {\n    b\n}\n"
	if got := w.String(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRustWriterCloseBlockSemiAddsTrailingSemicolon(t *testing.T) {
	w := NewRustWriter()
	w.OpenBlock("let x = if true")
	w.Line("1")
	w.CloseBlockSemi()

	want := "let x = if true {\n    1\n};\n"
	if got := w.String(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRustWriterBlankWritesEmptyLine(t *testing.T) {
	w := NewRustWriter()
	w.Line("a")
	w.Blank()
	w.Line("b")

	if got := w.String(); got != "a\n\nb\n" {
		t.Fatalf("expected a blank line between a and b, got %q", got)
	}
}
