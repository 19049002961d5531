package licenses

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	batch := Normalize([]string{"  Foo@Bar.COM ", "", "not-an-email", "x@y", "  "})

	want := []string{"foo@bar.com", "x@y"}
	if !reflect.DeepEqual(batch.Candidates, want) {
		t.Errorf("Expected candidates %v, got %v", want, batch.Candidates)
	}
	if len(batch.Invalid) != 1 || batch.Invalid[0] != "not-an-email" {
		t.Errorf("Expected invalid [not-an-email], got %v", batch.Invalid)
	}
}

func TestParseTags(t *testing.T) {
	batch := ParseTags("a@x.com, b@y.com\nc@z.com,\n\nbroken")

	want := []string{"a@x.com", "b@y.com", "c@z.com"}
	if !reflect.DeepEqual(batch.Candidates, want) {
		t.Errorf("Expected candidates %v, got %v", want, batch.Candidates)
	}
	if len(batch.Invalid) != 1 || batch.Invalid[0] != "broken" {
		t.Errorf("Expected invalid [broken], got %v", batch.Invalid)
	}
}

func TestParseCSV(t *testing.T) {
	// Header is dropped, email is the first field of each data line.
	raw := "email,name\r\na@x.com,Alice\r\nb@y.com,Bob\r\nbad-entry,Carl\r\n"
	batch := ParseCSV(raw)

	want := []string{"a@x.com", "b@y.com"}
	if !reflect.DeepEqual(batch.Candidates, want) {
		t.Errorf("Expected candidates %v, got %v", want, batch.Candidates)
	}
	if len(batch.Invalid) != 1 || batch.Invalid[0] != "bad-entry" {
		t.Errorf("Expected invalid [bad-entry], got %v", batch.Invalid)
	}

	// Header-only input yields nothing.
	if got := ParseCSV("email,name"); len(got.Candidates) != 0 || len(got.Invalid) != 0 {
		t.Errorf("Expected empty batch for header-only input, got %+v", got)
	}
}

func TestParseRows(t *testing.T) {
	rows := [][]string{
		{"Email", "Name"},
		{"a@x.com", "Alice"},
		{},
		{"B@X.com"},
	}
	batch := ParseRows(rows)

	want := []string{"a@x.com", "b@x.com"}
	if !reflect.DeepEqual(batch.Candidates, want) {
		t.Errorf("Expected candidates %v, got %v", want, batch.Candidates)
	}
}

func TestDedupe(t *testing.T) {
	unique, duplicates := Dedupe([]string{"a@x.com", "b@y.com", "a@x.com", "a@x.com"})

	if !reflect.DeepEqual(unique, []string{"a@x.com", "b@y.com"}) {
		t.Errorf("Expected unique [a@x.com b@y.com], got %v", unique)
	}
	if !reflect.DeepEqual(duplicates, []string{"a@x.com", "a@x.com"}) {
		t.Errorf("Expected duplicates [a@x.com a@x.com], got %v", duplicates)
	}
}
