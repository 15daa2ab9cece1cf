package barcode

import (
	"strconv"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"000111":        "000111",
		"  000111\r\n":  "000111",
		"\t4780012345 ": "4780012345",
		"   ":           "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenerate_TwelveDigits(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := Generate()
		if len(code) != 12 {
			t.Fatalf("expected 12 digits, got %q", code)
		}
		n, err := strconv.ParseInt(code, 10, 64)
		if err != nil {
			t.Fatalf("not numeric: %q", code)
		}
		if n < generatedMin || n > generatedMax {
			t.Fatalf("out of range: %d", n)
		}
	}
}

func TestGenerateUnique(t *testing.T) {
	calls := 0
	code := GenerateUnique(func(string) bool {
		calls++
		return calls < 3
	}, 5)
	if code == "" || calls != 3 {
		t.Fatalf("expected success on third attempt, got %q after %d calls", code, calls)
	}

	if code := GenerateUnique(func(string) bool { return true }, 4); code != "" {
		t.Fatalf("expected empty code when every attempt collides, got %q", code)
	}
}
