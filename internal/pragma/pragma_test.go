package pragma

import "testing"

func TestParseLinesExtractsKeyValuePragmas(t *testing.T) {
	lines := []string{
		"# a plain comment",
		"# @py2rs: type_strategy = aggressive",
		"def f():",
		"  # @py2rs: ownership = borrowed",
	}

	ps := ParseLines(lines)
	if len(ps) != 2 {
		t.Fatalf("expected 2 pragmas, got %d: %+v", len(ps), ps)
	}

	if ps[0].Key != "type_strategy" || ps[0].Value != "aggressive" {
		t.Fatalf("expected type_strategy=aggressive, got %+v", ps[0])
	}

	if ps[1].Key != "ownership" || ps[1].Value != "borrowed" {
		t.Fatalf("expected ownership=borrowed, got %+v", ps[1])
	}
}

func TestParseLinesSkipsMalformedPragmaLine(t *testing.T) {
	lines := []string{"# @py2rs: not_a_valid_shape"}

	if ps := ParseLines(lines); len(ps) != 0 {
		t.Fatalf("expected a malformed pragma line to be skipped, got %+v", ps)
	}
}

func TestUnknownReportsUnrecognizedKeys(t *testing.T) {
	ps := []Pragma{
		{Key: KeyOwnership, Value: "owned"},
		{Key: "made_up_key", Value: "1"},
	}

	unknown := Unknown(ps)
	if len(unknown) != 1 || unknown[0].Key != "made_up_key" {
		t.Fatalf("expected only made_up_key to be reported unknown, got %+v", unknown)
	}
}

func TestUnknownEmptyWhenAllKeysRecognized(t *testing.T) {
	ps := []Pragma{{Key: KeyTypeStrategy, Value: "x"}, {Key: KeyPerformanceCritical, Value: "true"}}

	if unknown := Unknown(ps); len(unknown) != 0 {
		t.Fatalf("expected no unknown pragmas, got %+v", unknown)
	}
}
