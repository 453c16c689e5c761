// Package title holds the Title aggregate and the pure scoring primitives:
// normalization, phonetic fingerprints and the pairwise similarity score.
package title

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MaxNameLength caps the raw title name.
const MaxNameLength = 200

// Attributes are the caller-supplied descriptive fields of a title.
// Only Name participates in scoring; the rest is registration metadata.
type Attributes struct {
	Name             string
	HindiTitle       string
	TitleCode        string
	RegisterSerialNo string
	RegnNo           string
	OwnerName        string
	State            string
	StateCode        string
	PublicationCity  string
	Periodicity      string
}

// Title is the title aggregate (immutable value object). The derived fields
// normalized/soundex/metaphone always reflect the current name; similarity and
// verificationProbability are cached corpus-dependent scores maintained by the
// registry service.
type Title struct {
	id                      string
	attrs                   Attributes
	normalized              string
	soundex                 string
	metaphone               string
	similarity              int
	verificationProbability int
	verified                bool
	createdBy               string
	createdAt               int64
	updatedAt               int64
}

// New validates attributes and creates a Title with a fresh id and all
// derived fields computed. Cached scores start at 0/100 and unverified;
// the registry service sets them after scanning the corpus.
func New(createdBy string, attrs Attributes, now int64) (Title, error) {
	if err := validate(createdBy, attrs); err != nil {
		return Title{}, err
	}
	codes := Phonetics(attrs.Name)
	return Title{
		id:                      uuid.NewString(),
		attrs:                   attrs,
		normalized:              Normalize(attrs.Name),
		soundex:                 codes.Soundex,
		metaphone:               codes.Metaphone,
		verificationProbability: 100,
		createdBy:               createdBy,
		createdAt:               now,
		updatedAt:               now,
	}, nil
}

// Reconstruct creates a Title without validation (storage hydration).
func Reconstruct(
	id string, attrs Attributes, normalized, soundex, metaphone string,
	similarity, verificationProbability int, verified bool,
	createdBy string, createdAt, updatedAt int64,
) Title {
	return Title{
		id: id, attrs: attrs,
		normalized: normalized, soundex: soundex, metaphone: metaphone,
		similarity: similarity, verificationProbability: verificationProbability,
		verified: verified, createdBy: createdBy,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

// Revise returns a copy with new attributes applied and every derived field
// recomputed, so normalized/soundex/metaphone can never go stale after a
// rename. Identity, ownership and createdAt are preserved.
func (t Title) Revise(attrs Attributes, now int64) (Title, error) {
	if err := validate(t.createdBy, attrs); err != nil {
		return Title{}, err
	}
	t.attrs = attrs
	t.normalized = Normalize(attrs.Name)
	codes := Phonetics(attrs.Name)
	t.soundex = codes.Soundex
	t.metaphone = codes.Metaphone
	t.updatedAt = now
	return t, nil
}

// WithScore returns a copy with the cached similarity percentage set and the
// verification probability kept complementary by construction.
func (t Title) WithScore(percent int) Title {
	t.similarity = percent
	t.verificationProbability = 100 - percent
	return t
}

// WithVerified returns a copy with the verified flag set.
func (t Title) WithVerified(v bool) Title {
	t.verified = v
	return t
}

// ID returns the title identifier.
func (t *Title) ID() string { return t.id }

// Name returns the raw display name.
func (t *Title) Name() string { return t.attrs.Name }

// Attrs returns the descriptive attributes.
func (t *Title) Attrs() Attributes { return t.attrs }

// Normalized returns the canonical comparable form of the name.
func (t *Title) Normalized() string { return t.normalized }

// Soundex returns the coarse phonetic fingerprint.
func (t *Title) Soundex() string { return t.soundex }

// Metaphone returns the finer phonetic fingerprint.
func (t *Title) Metaphone() string { return t.metaphone }

// Similarity returns the cached percentage similarity to the closest other
// corpus title.
func (t *Title) Similarity() int { return t.similarity }

// VerificationProbability returns 100 minus the cached similarity.
func (t *Title) VerificationProbability() int { return t.verificationProbability }

// Verified reports whether the title passed the similarity check when last
// submitted or revised.
func (t *Title) Verified() bool { return t.verified }

// CreatedBy returns the owning user id.
func (t *Title) CreatedBy() string { return t.createdBy }

// CreatedAt returns the creation time in unix milliseconds.
func (t *Title) CreatedAt() int64 { return t.createdAt }

// UpdatedAt returns the last modification time in unix milliseconds.
func (t *Title) UpdatedAt() int64 { return t.updatedAt }

func validate(createdBy string, attrs Attributes) error {
	if createdBy == "" {
		return fmt.Errorf("owner is required")
	}
	name := strings.TrimSpace(attrs.Name)
	if name == "" {
		return fmt.Errorf("title name is required")
	}
	if len(attrs.Name) > MaxNameLength {
		return fmt.Errorf("title name too long (max %d)", MaxNameLength)
	}
	if Normalize(attrs.Name) == "" {
		return fmt.Errorf("title name has no comparable characters")
	}
	return nil
}
