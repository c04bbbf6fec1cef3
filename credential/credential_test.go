package credential

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]string
	}{
		{"single entry", "a=1", map[string]string{"a": "1"}},
		{"two entries", "a=1; b=2", map[string]string{"a": "1", "b": "2"}},
		{"no space after separator", "a=1;b=2", map[string]string{"a": "1", "b": "2"}},
		{"extra whitespace", "  a = 1 ;  b =  2  ", map[string]string{"a": "1", "b": "2"}},
		{"quoted value", `a="1"`, map[string]string{"a": "1"}},
		{"quoted value with separator", `a="1; 2"`, map[string]string{"a": "1; 2"}},
		{"quoted value with equals", `X-APPLE-WEBAUTH-PCS-Photos="123+kv2=="`, map[string]string{"X-APPLE-WEBAUTH-PCS-Photos": "123+kv2=="}},
		{"quoted and unquoted mixed", `a="x; y"; b=2`, map[string]string{"a": "x; y", "b": "2"}},
		{"empty value", "a=", map[string]string{"a": ""}},
		{"empty quoted value", `a=""`, map[string]string{"a": ""}},
		{"empty name", "=banana", map[string]string{"": "banana"}},
		{"duplicate name last wins", "a=1; a=2", map[string]string{"a": "2"}},
		{"trailing separator", "a=1; ", map[string]string{"a": "1"}},
		{"value with inner equals", "a=b=c", map[string]string{"a": "b=c"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cred, err := Parse(tc.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tc.input, err)
			}
			if !reflect.DeepEqual(cred.values, tc.expected) {
				t.Errorf("Parse(%q) = %v, want %v", tc.input, cred.values, tc.expected)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"whitespace only", "   "},
		{"entry without equals", "task=4343; session17373; client=abs31"},
		{"single token", "session17373"},
		{"unterminated quote", `a="1; 2`},
		{"junk after quoted value", `a="1"x; b=2`},
		{"only separators", "; ; ;"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.input)
			if err == nil {
				t.Fatalf("Parse(%q) should fail", tc.input)
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("Parse(%q) error should be *ParseError, got %T", tc.input, err)
			}
		})
	}
}

func TestParse_ErrorNamesOffendingEntry(t *testing.T) {
	_, err := Parse("task=4343; session17373; client=abs31")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if parseErr.Entry != "session17373" {
		t.Errorf("Entry = %q, want %q", parseErr.Entry, "session17373")
	}
}

func TestHeader_RoundTrip(t *testing.T) {
	inputs := []string{
		"a=1",
		"a=1; b=2",
		`a="1; 2"; b=3`,
		`X-APPLE-WEBAUTH-TOKEN="v=2:t=abc=="; X-APPLE-WEBAUTH-USER="v=1:s=0"`,
		"a=; b=2",
	}

	for _, input := range inputs {
		cred, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", input, err)
		}
		again, err := Parse(cred.Header())
		if err != nil {
			t.Fatalf("Parse(Header) for %q: %v (header was %q)", input, err, cred.Header())
		}
		if !reflect.DeepEqual(cred.values, again.values) {
			t.Errorf("round trip for %q: %v != %v", input, cred.values, again.values)
		}
	}
}

func TestHeader_Deterministic(t *testing.T) {
	cred, err := Parse("b=2; a=1; c=3")
	if err != nil {
		t.Fatal(err)
	}
	want := "a=1; b=2; c=3"
	if got := cred.Header(); got != want {
		t.Errorf("Header() = %q, want %q", got, want)
	}
}

func TestGet(t *testing.T) {
	cred, err := Parse("a=1; b=2")
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := cred.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}
	if _, ok := cred.Get("missing"); ok {
		t.Error("Get(missing) should report absence")
	}
}

func TestRefreshed_ReplacesPerName(t *testing.T) {
	cred, err := Parse("a=1; b=2; c=3")
	if err != nil {
		t.Fatal(err)
	}

	refreshed := cred.Refreshed(map[string]string{"b": "new", "d": "4"})

	// Updated name replaced, untouched names kept, new name added
	expected := map[string]string{"a": "1", "b": "new", "c": "3", "d": "4"}
	if !reflect.DeepEqual(refreshed.values, expected) {
		t.Errorf("Refreshed = %v, want %v", refreshed.values, expected)
	}

	// Original untouched
	if v, _ := cred.Get("b"); v != "2" {
		t.Errorf("original credential mutated: b = %q", v)
	}
	if cred.Len() != 3 {
		t.Errorf("original credential mutated: len = %d", cred.Len())
	}
}

func TestClone_Independent(t *testing.T) {
	cred, err := Parse("a=1")
	if err != nil {
		t.Fatal(err)
	}
	clone := cred.Clone()
	clone.values["a"] = "changed"
	if v, _ := cred.Get("a"); v != "1" {
		t.Error("Clone should not share storage with the original")
	}
}

func TestNames_Sorted(t *testing.T) {
	cred, err := Parse("c=3; a=1; b=2")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "b", "c"}
	if got := cred.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}
