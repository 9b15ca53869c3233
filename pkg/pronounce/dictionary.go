// Package pronounce loads a pronouncing dictionary in the CMU Pronouncing
// Dictionary format and answers "is this word pronounceable?" lookups.
//
// Each non-comment line holds a headword followed by its phones:
//
//	HELLO  HH AH0 L OW1
//	HELLO(1)  HH EH0 L OW1
//
// Alternate pronunciations carry a parenthesised counter suffix. Lines
// starting with ";;;" are comments. Headwords are matched case-insensitively.
//
// A [Dictionary] is read-only after construction and safe for concurrent use.
package pronounce

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ErrEmpty is returned by [Load] when the input contains no entries.
var ErrEmpty = errors.New("pronounce: dictionary is empty")

// Dictionary maps lower-cased words to their pronunciations.
type Dictionary struct {
	entries map[string][]string
}

// New builds a Dictionary from an in-memory word → pronunciations map.
// Keys are lower-cased; words without pronunciations are kept but never
// reported as pronounceable.
func New(entries map[string][]string) *Dictionary {
	d := &Dictionary{entries: make(map[string][]string, len(entries))}
	for w, phones := range entries {
		key := strings.ToLower(strings.TrimSpace(w))
		if key == "" {
			continue
		}
		d.entries[key] = append(d.entries[key], phones...)
	}
	return d
}

// LoadFile opens path and parses it with [Load].
func LoadFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pronounce: open %q: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a CMU-format dictionary from r.
func Load(r io.Reader) (*Dictionary, error) {
	d := &Dictionary{entries: make(map[string][]string)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ";;;") {
			continue
		}
		word, phones, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("pronounce: line %d: missing phones", lineNo)
		}
		word = headword(word)
		phones = strings.Join(strings.Fields(phones), " ")
		if word == "" || phones == "" {
			continue
		}
		d.entries[word] = append(d.entries[word], phones)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("pronounce: read: %w", err)
	}
	if len(d.entries) == 0 {
		return nil, ErrEmpty
	}
	return d, nil
}

// headword lower-cases w and strips an alternate-pronunciation suffix such
// as "(1)".
func headword(w string) string {
	if i := strings.IndexByte(w, '('); i > 0 && strings.HasSuffix(w, ")") {
		w = w[:i]
	}
	return strings.ToLower(w)
}

// Phones returns every known pronunciation of word, or nil when the word is
// not in the dictionary. The lookup is case-insensitive.
func (d *Dictionary) Phones(word string) []string {
	if d == nil {
		return nil
	}
	return d.entries[strings.ToLower(word)]
}

// Contains reports whether word has at least one pronunciation.
func (d *Dictionary) Contains(word string) bool {
	return len(d.Phones(word)) > 0
}

// Len returns the number of distinct headwords.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Words returns all headwords that have at least one pronunciation, sorted.
func (d *Dictionary) Words() []string {
	if d == nil {
		return nil
	}
	words := make([]string, 0, len(d.entries))
	for w, phones := range d.entries {
		if len(phones) > 0 {
			words = append(words, w)
		}
	}
	sort.Strings(words)
	return words
}
