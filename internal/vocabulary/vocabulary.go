// Package vocabulary holds the fixed categorical column sets learned offline
// and aligns observed dominant tokens onto them.
package vocabulary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Column name templates for dominant-token indicators.
const (
	SentColumnPrefix     = "ERC20_most_sent_token_"
	ReceivedColumnPrefix = "ERC20_most_rec_token_"

	// NoneToken is the catch-all bucket for absent or unknown tokens.
	NoneToken = "None"
)

// ErrUnavailable is returned when a vocabulary resource is missing or unreadable.
// Extraction continues without categorical columns.
var ErrUnavailable = errors.New("vocabulary unavailable")

// Vocabulary is an immutable pair of ordered column sets.
// Safe for concurrent use once constructed.
type Vocabulary struct {
	sent        []string
	received    []string
	sentSet     map[string]struct{}
	receivedSet map[string]struct{}
}

// New builds a vocabulary from column names. Duplicates keep their first position.
func New(sent, received []string) *Vocabulary {
	v := &Vocabulary{}
	v.sent, v.sentSet = dedupe(sent)
	v.received, v.receivedSet = dedupe(received)
	return v
}

// Empty returns a vocabulary with no columns.
func Empty() *Vocabulary {
	return New(nil, nil)
}

// Load reads the sent-side and received-side vocabulary files.
// On a missing or unreadable file it returns an empty vocabulary and an error
// wrapping ErrUnavailable; the returned vocabulary is always usable.
func Load(sentPath, receivedPath string) (*Vocabulary, error) {
	sent, err := loadFile(sentPath)
	if err != nil {
		return Empty(), err
	}
	received, err := loadFile(receivedPath)
	if err != nil {
		return Empty(), err
	}
	return New(sent, received), nil
}

// Parse reads one column name per line.
// Surrounding whitespace, quotes and commas are stripped; blank lines are skipped.
func Parse(r io.Reader) ([]string, error) {
	var columns []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.Trim(strings.TrimSpace(scanner.Text()), "', ")
		if line == "" {
			continue
		}
		columns = append(columns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return columns, nil
}

// Available reports whether both sides have at least one column.
func (v *Vocabulary) Available() bool {
	return v != nil && len(v.sent) > 0 && len(v.received) > 0
}

// SentColumns returns the sent-side columns in file order.
func (v *Vocabulary) SentColumns() []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v.sent...)
}

// ReceivedColumns returns the received-side columns in file order.
func (v *Vocabulary) ReceivedColumns() []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v.received...)
}

// HasSent reports whether column is a sent-side column.
func (v *Vocabulary) HasSent(column string) bool {
	if v == nil {
		return false
	}
	_, ok := v.sentSet[column]
	return ok
}

// HasReceived reports whether column is a received-side column.
func (v *Vocabulary) HasReceived(column string) bool {
	if v == nil {
		return false
	}
	_, ok := v.receivedSet[column]
	return ok
}

// SentColumn returns the indicator column name for a dominant sent token.
func SentColumn(token string) string {
	return SentColumnPrefix + token
}

// ReceivedColumn returns the indicator column name for a dominant received token.
func ReceivedColumn(token string) string {
	return ReceivedColumnPrefix + token
}

func loadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, path, err)
	}
	defer f.Close()

	columns, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, path, err)
	}
	return columns, nil
}

func dedupe(columns []string) ([]string, map[string]struct{}) {
	set := make(map[string]struct{}, len(columns))
	ordered := make([]string, 0, len(columns))
	for _, c := range columns {
		if _, ok := set[c]; ok {
			continue
		}
		set[c] = struct{}{}
		ordered = append(ordered, c)
	}
	return ordered, set
}
