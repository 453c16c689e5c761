package title

import "github.com/antzucaro/matchr"

// Codes holds the two phonetic fingerprints of a title: a coarse soundex code
// and a finer metaphone code. Both are derived from the raw title text and are
// only ever compared against codes produced by this same function.
type Codes struct {
	Soundex   string
	Metaphone string
}

// Phonetics computes the phonetic fingerprints for a raw title.
// Deterministic and pure.
func Phonetics(raw string) Codes {
	primary, _ := matchr.DoubleMetaphone(raw)
	return Codes{
		Soundex:   matchr.Soundex(raw),
		Metaphone: primary,
	}
}
