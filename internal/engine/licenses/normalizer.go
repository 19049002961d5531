package licenses

import (
	"strings"

	"partnerhub/internal/pkg/validator"
)

// Batch is the normalized outcome of parsing raw input: Candidates are
// lower-cased entries that look like emails, Invalid keeps the rejected raw
// entries for the final error report.
type Batch struct {
	Candidates []string
	Invalid    []string
}

// Normalize filters and lower-cases a list of raw entries. An entry is a
// candidate iff it is non-empty and contains '@'; no further email grammar
// validation is applied.
func Normalize(entries []string) Batch {
	var batch Batch
	for _, entry := range entries {
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			continue
		}
		if !validator.IsCandidateEmail(trimmed) {
			batch.Invalid = append(batch.Invalid, trimmed)
			continue
		}
		batch.Candidates = append(batch.Candidates, validator.Normalize(trimmed))
	}
	return batch
}

// ParseTags handles the interactive form input: a comma or newline delimited
// string of addresses.
func ParseTags(raw string) Batch {
	entries := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	return Normalize(entries)
}

// ParseCSV handles raw CSV text: the first line is a header and is dropped,
// and the email is the first field of every remaining line.
func ParseCSV(raw string) Batch {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	if len(lines) <= 1 {
		return Batch{}
	}

	entries := make([]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := strings.Split(line, ",")
		entries = append(entries, strings.TrimSpace(fields[0]))
	}
	return Normalize(entries)
}

// ParseRows handles tabular input that is already split into rows, e.g. a
// spreadsheet sheet. The first row is treated as a header.
func ParseRows(rows [][]string) Batch {
	if len(rows) <= 1 {
		return Batch{}
	}

	entries := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		entries = append(entries, strings.TrimSpace(row[0]))
	}
	return Normalize(entries)
}

// Dedupe removes case-insensitive duplicates while preserving first-seen
// order, returning the dropped repeats separately so they still show up in
// the batch report. Deduping up front keeps duplicate-within-batch behavior
// deterministic instead of depending on check-then-insert ordering.
func Dedupe(candidates []string) (unique, duplicates []string) {
	seen := make(map[string]struct{}, len(candidates))
	unique = make([]string, 0, len(candidates))
	for _, email := range candidates {
		if _, ok := seen[email]; ok {
			duplicates = append(duplicates, email)
			continue
		}
		seen[email] = struct{}{}
		unique = append(unique, email)
	}
	return unique, duplicates
}
