// Package normalize cleans tag values read from files and remote sources
// and derives the keys used to match them.
package normalize

import (
	"strings"
	"unicode"

	"github.com/listenupapp/crate-server/internal/genre"
)

// Sanitize removes null bytes, which some tag parsers leave as terminators,
// and trims surrounding whitespace.
func Sanitize(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s))
}

// NameKey returns the matching key for an artist name.
// It folds case and diacritics, spells out "&", drops a leading "the"
// and removes punctuation.
//
//	"The Beatles"       -> "beatles"
//	"Simon & Garfunkel" -> "simon and garfunkel"
//	"Björk"             -> "bjork"
//
// Names made only of punctuation keep their canonical text so they still
// get a non-empty key.
func NameKey(name string) string {
	canonical := genre.Canonicalize(Sanitize(name))
	if canonical == "" {
		return ""
	}

	s := strings.ReplaceAll(canonical, "&", " and ")
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		case unicode.IsSpace(r), r == '-', r == '/', r == '.', r == '_':
			return ' '
		default:
			return -1
		}
	}, s)

	fields := strings.Fields(s)
	if len(fields) > 1 && fields[0] == "the" {
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return canonical
	}
	return strings.Join(fields, " ")
}

// EscapeLike escapes LIKE wildcards so s matches literally.
// Use with ESCAPE '\'.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ContainsPattern returns a LIKE pattern matching s anywhere, lowercased.
func ContainsPattern(s string) string {
	return "%" + EscapeLike(strings.ToLower(s)) + "%"
}

// GenreTags splits a multi-valued genre tag into its values.
// Values are separated by ';', ',', '/' or NUL. A value containing '/'
// that is itself a known alias ("Hip-Hop/Rap") is kept whole.
// Blank and repeated values are dropped; order is preserved.
func GenreTags(raw string) []string {
	aliases := genre.DefaultAliases()

	pieces := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == ',' || r == 0
	})

	seen := make(map[string]struct{})
	var out []string
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	for _, piece := range pieces {
		if !strings.Contains(piece, "/") {
			add(piece)
			continue
		}
		if _, ok := aliases.Resolve(genre.Canonicalize(piece)); ok {
			add(piece)
			continue
		}
		for _, part := range strings.Split(piece, "/") {
			add(part)
		}
	}
	return out
}
