package position

import "testing"

func TestPositionIsValid(t *testing.T) {
	if !(Position{Line: 1, Column: 1, Offset: 0}).IsValid() {
		t.Fatal("expected line 1 col 1 offset 0 to be valid")
	}

	if (Position{Line: 0, Column: 1}).IsValid() {
		t.Fatal("expected line 0 to be invalid")
	}
}

func TestPositionBeforeAfter(t *testing.T) {
	a := Position{Filename: "f.py", Offset: 1}
	b := Position{Filename: "f.py", Offset: 5}

	if !a.Before(b) || b.Before(a) {
		t.Fatal("expected a before b")
	}

	if !b.After(a) || a.After(b) {
		t.Fatal("expected b after a")
	}
}

func TestSpanIsValidRejectsCrossFileOrBackwards(t *testing.T) {
	valid := Span{Start: Position{Filename: "f.py", Line: 1, Column: 1, Offset: 0}, End: Position{Filename: "f.py", Line: 1, Column: 5, Offset: 4}}
	if !valid.IsValid() {
		t.Fatal("expected a same-file, forward span to be valid")
	}

	crossFile := Span{Start: Position{Filename: "a.py", Line: 1, Column: 1, Offset: 0}, End: Position{Filename: "b.py", Line: 1, Column: 5, Offset: 4}}
	if crossFile.IsValid() {
		t.Fatal("expected a cross-file span to be invalid")
	}

	backwards := Span{Start: Position{Filename: "f.py", Line: 1, Column: 5, Offset: 4}, End: Position{Filename: "f.py", Line: 1, Column: 1, Offset: 0}}
	if backwards.IsValid() {
		t.Fatal("expected a backwards span to be invalid")
	}
}

func TestSpanContains(t *testing.T) {
	s := Span{Start: Position{Filename: "f.py", Line: 1, Column: 3, Offset: 2}, End: Position{Filename: "f.py", Line: 1, Column: 9, Offset: 8}}

	if !s.Contains(Position{Filename: "f.py", Line: 1, Column: 6, Offset: 5}) {
		t.Fatal("expected an interior offset to be contained")
	}

	if s.Contains(Position{Filename: "f.py", Line: 1, Column: 9, Offset: 8}) {
		t.Fatal("expected the end offset to be exclusive")
	}

	if s.Contains(Position{Filename: "other.py", Line: 1, Column: 6, Offset: 5}) {
		t.Fatal("expected a position in a different file to not be contained")
	}
}

func TestSpanOverlaps(t *testing.T) {
	a := Span{Start: Position{Filename: "f.py", Line: 1, Column: 1, Offset: 0}, End: Position{Filename: "f.py", Line: 1, Column: 6, Offset: 5}}
	b := Span{Start: Position{Filename: "f.py", Line: 1, Column: 4, Offset: 3}, End: Position{Filename: "f.py", Line: 1, Column: 9, Offset: 8}}
	c := Span{Start: Position{Filename: "f.py", Line: 1, Column: 6, Offset: 5}, End: Position{Filename: "f.py", Line: 1, Column: 11, Offset: 10}}

	if !a.Overlaps(b) {
		t.Fatal("expected overlapping spans to overlap")
	}

	if a.Overlaps(c) {
		t.Fatal("expected adjacent, non-overlapping spans to not overlap")
	}
}

func TestSpanUnion(t *testing.T) {
	a := Span{Start: Position{Filename: "f.py", Line: 1, Column: 3, Offset: 2}, End: Position{Filename: "f.py", Line: 1, Column: 6, Offset: 5}}
	b := Span{Start: Position{Filename: "f.py", Line: 1, Column: 1, Offset: 0}, End: Position{Filename: "f.py", Line: 1, Column: 4, Offset: 3}}

	u := a.Union(b)
	if u.Start.Offset != 0 || u.End.Offset != 5 {
		t.Fatalf("expected union to span [0,5), got [%d,%d)", u.Start.Offset, u.End.Offset)
	}
}

func TestSpanLength(t *testing.T) {
	s := Span{Start: Position{Filename: "f.py", Line: 1, Column: 3, Offset: 2}, End: Position{Filename: "f.py", Line: 1, Column: 10, Offset: 9}}
	if s.Length() != 7 {
		t.Fatalf("expected length 7, got %d", s.Length())
	}
}

func TestSourceFileGetLine(t *testing.T) {
	sf := NewSourceFile("f.py", "a\nbb\nccc")

	if sf.GetLine(2) != "bb" {
		t.Fatalf("expected line 2 to be bb, got %q", sf.GetLine(2))
	}

	if sf.GetLine(0) != "" || sf.GetLine(99) != "" {
		t.Fatal("expected out-of-range line numbers to return empty string")
	}
}

func TestSourceFilePositionOffsetRoundTrip(t *testing.T) {
	sf := NewSourceFile("f.py", "ab\ncd\nef")

	pos := sf.PositionFromOffset(4)
	if pos.Line != 2 || pos.Column != 2 {
		t.Fatalf("expected offset 4 to be line 2 col 2, got line %d col %d", pos.Line, pos.Column)
	}

	if got := sf.OffsetFromPosition(pos); got != 4 {
		t.Fatalf("expected position to round-trip back to offset 4, got %d", got)
	}
}

func TestSourceFileGetSpanText(t *testing.T) {
	sf := NewSourceFile("f.py", "hello world")
	span := Span{Start: Position{Filename: "f.py", Line: 1, Column: 1, Offset: 0}, End: Position{Filename: "f.py", Line: 1, Column: 6, Offset: 5}}

	if got := sf.GetSpanText(span); got != "hello" {
		t.Fatalf("expected span text hello, got %q", got)
	}
}

func TestSourceMapRegistersAndLooksUpFiles(t *testing.T) {
	sm := NewSourceMap()
	sm.AddFile("f.py", "x = 1\ny = 2")

	if sm.GetFile("f.py") == nil {
		t.Fatal("expected f.py to be registered")
	}

	if sm.GetLine(Position{Filename: "f.py", Line: 2}) != "y = 2" {
		t.Fatalf("expected line 2 to be y = 2, got %q", sm.GetLine(Position{Filename: "f.py", Line: 2}))
	}

	if sm.GetFile("missing.py") != nil {
		t.Fatal("expected an unregistered file to return nil")
	}
}

func TestDiagnosticAccumulatesErrorsAndWarnings(t *testing.T) {
	d := NewDiagnostic()
	d.AddError(Position{Line: 1, Column: 1}, "type", "bad type")
	d.AddWarning(Position{Line: 2, Column: 1}, "style", "could be simpler")

	if !d.HasErrors() || d.ErrorCount() != 1 {
		t.Fatal("expected one error to be recorded")
	}

	if !d.HasWarnings() || d.WarningCount() != 1 {
		t.Fatal("expected one warning to be recorded")
	}

	d.Clear()
	if d.HasErrors() || d.HasWarnings() {
		t.Fatal("expected Clear to remove all errors and warnings")
	}
}
