// Package safestring normalizes free text and structured identifiers typed into forms:
// descriptions, case file numbers (expedientes) and publication numbers.
package safestring

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// DefaultMaxLen is the truncation length used when Options.MaxLen is zero.
const DefaultMaxLen = 250

var (
	// ErrEmpty is returned for blank input where a value is required.
	ErrEmpty = errors.New("empty value")
	// ErrFormat is returned when input cannot be read as the expected shape.
	ErrFormat = errors.New("invalid format")
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reSeparators = regexp.MustCompile(`[^0-9A-Z]+`)
)

// Options tunes String.
type Options struct {
	// MaxLen truncates the result, appending "...". Zero means DefaultMaxLen, negative disables.
	MaxLen int
	// KeepEnie preserves ñ/Ñ instead of folding them to N.
	KeepEnie bool
	// KeepCase skips the final uppercasing.
	KeepCase bool
}

// String folds diacritics, replaces anything outside letters, digits and . ( ) / -
// with a space, collapses whitespace and uppercases.
func String(s string, opts Options) string {
	var b strings.Builder
	for _, r := range norm.NFC.String(s) {
		if opts.KeepEnie && (r == 'ñ' || r == 'Ñ') {
			b.WriteRune(r)
			continue
		}
		for _, d := range norm.NFD.String(string(r)) {
			if unicode.Is(unicode.Mn, d) {
				continue
			}
			if allowed(d) {
				b.WriteRune(d)
			} else {
				b.WriteRune(' ')
			}
		}
	}

	out := strings.TrimSpace(reWhitespace.ReplaceAllString(b.String(), " "))
	if !opts.KeepCase {
		out = strings.ToUpper(out)
	}

	maxLen := opts.MaxLen
	if maxLen == 0 {
		maxLen = DefaultMaxLen
	}
	return truncate(out, maxLen)
}

// Message trims an audit or flash message to maxLen runes, appending "...".
func Message(s string, maxLen int) string {
	return truncate(s, maxLen)
}

// Expediente normalizes a case file number to NUM/YYYY with up to two extra
// segments (NUM/YYYY-X-Y). The year may not be later than now's year.
func Expediente(s string, now time.Time) (string, error) {
	parts, err := split(s)
	if err != nil {
		return "", err
	}

	numero, ano, err := numeroAno(parts, now)
	if err != nil {
		return "", err
	}

	limpio := fmt.Sprintf("%d/%d", numero, ano)
	for _, extra := range parts[2:min(len(parts), 4)] {
		limpio += "-" + extra
	}

	if len(limpio) > 16 {
		return "", fmt.Errorf("%w: expediente fuera de rango", ErrFormat)
	}
	return limpio, nil
}

// NumeroPublicacion normalizes a publication number to NUM/YYYY.
func NumeroPublicacion(s string, now time.Time) (string, error) {
	parts, err := split(s)
	if err != nil {
		return "", err
	}

	numero, ano, err := numeroAno(parts, now)
	if err != nil {
		return "", err
	}

	limpio := fmt.Sprintf("%d/%d", numero, ano)
	if len(limpio) > 16 {
		return "", fmt.Errorf("%w: número de publicación fuera de rango", ErrFormat)
	}
	return limpio, nil
}

func split(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrEmpty
	}
	joined := reSeparators.ReplaceAllString(strings.ToUpper(s), "|")
	return strings.Split(strings.Trim(joined, "|"), "|"), nil
}

func numeroAno(parts []string, now time.Time) (int, int, error) {
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("%w: falta el año", ErrFormat)
	}

	numero, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: número no válido", ErrFormat)
	}
	ano, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: año no válido", ErrFormat)
	}

	if numero <= 0 {
		return 0, 0, fmt.Errorf("%w: número fuera de rango", ErrFormat)
	}
	if ano < 1900 || ano > now.Year() {
		return 0, 0, fmt.Errorf("%w: año fuera de rango", ErrFormat)
	}
	return numero, ano, nil
}

func allowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune(".()/- ", r)
}

func truncate(s string, maxLen int) string {
	if maxLen < 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
