package id

import (
	"fmt"
	"strconv"
	"strings"
)

// JournalPrefix starts every journal number.
const JournalPrefix = "JE"

// FormatJournalNumber returns a journal number like "JE-2025-01-001".
func FormatJournalNumber(year, month, seq int) string {
	return fmt.Sprintf("%s-%04d-%02d-%03d", JournalPrefix, year, month, seq)
}

// MonthPrefix returns the shared prefix of every journal number in a month,
// "JE-2025-01-".
func MonthPrefix(year, month int) string {
	return fmt.Sprintf("%s-%04d-%02d-", JournalPrefix, year, month)
}

// ParseJournalNumber parses "JE-2025-01-001" into year, month, seq.
func ParseJournalNumber(number string) (year, month, seq int, err error) {
	parts := strings.SplitN(number, "-", 4)
	if len(parts) != 4 || parts[0] != JournalPrefix {
		return 0, 0, 0, fmt.Errorf("invalid journal number format: %q", number)
	}

	year, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in journal number %q: %w", number, err)
	}

	month, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid month in journal number %q: %w", number, err)
	}
	if month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("month %d out of range in journal number %q", month, number)
	}

	seq, err = strconv.Atoi(parts[3])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in journal number %q: %w", number, err)
	}

	return year, month, seq, nil
}

// NextSeq returns one past the highest sequence among numbers in year/month.
// Numbers that do not parse, or belong to another month, are ignored.
func NextSeq(numbers []string, year, month int) int {
	maxSeq := 0
	for _, n := range numbers {
		y, m, seq, err := ParseJournalNumber(n)
		if err != nil || y != year || m != month {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1
}
