package title

import (
	"fmt"
	"strconv"

	domtitle "github.com/pressregistry/titledex/internal/domain/title"
)

// titleToHash converts a domain Title to a flat map for HSET. Derived fields
// are stored alongside the raw attributes so corpus scans never re-derive.
func titleToHash(t domtitle.Title) map[string]string {
	attrs := t.Attrs()
	return map[string]string{
		"id":                 t.ID(),
		"title_name":         attrs.Name,
		"hindi_title":        attrs.HindiTitle,
		"title_code":         attrs.TitleCode,
		"register_serial_no": attrs.RegisterSerialNo,
		"regn_no":            attrs.RegnNo,
		"owner_name":         attrs.OwnerName,
		"state":              attrs.State,
		"state_code":         attrs.StateCode,
		"publication_city":   attrs.PublicationCity,
		"periodicity":        attrs.Periodicity,
		"normalized":         t.Normalized(),
		"soundex":            t.Soundex(),
		"metaphone":          t.Metaphone(),
		"similarity":         strconv.Itoa(t.Similarity()),
		"verification_prob":  strconv.Itoa(t.VerificationProbability()),
		"verified":           strconv.FormatBool(t.Verified()),
		"created_by":         t.CreatedBy(),
		"created_at":         strconv.FormatInt(t.CreatedAt(), 10),
		"updated_at":         strconv.FormatInt(t.UpdatedAt(), 10),
	}
}

// titleFromHash hydrates a domain Title from an HGETALL result map.
func titleFromHash(m map[string]string) (domtitle.Title, error) {
	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return domtitle.Title{}, fmt.Errorf("invalid created_at: %w", err)
	}
	updatedAt, err := strconv.ParseInt(m["updated_at"], 10, 64)
	if err != nil {
		return domtitle.Title{}, fmt.Errorf("invalid updated_at: %w", err)
	}

	similarity, _ := strconv.Atoi(m["similarity"])
	verificationProb := 100 - similarity
	if s, ok := m["verification_prob"]; ok && s != "" {
		if parsed, err := strconv.Atoi(s); err == nil {
			verificationProb = parsed
		}
	}
	verified, _ := strconv.ParseBool(m["verified"])

	attrs := domtitle.Attributes{
		Name:             m["title_name"],
		HindiTitle:       m["hindi_title"],
		TitleCode:        m["title_code"],
		RegisterSerialNo: m["register_serial_no"],
		RegnNo:           m["regn_no"],
		OwnerName:        m["owner_name"],
		State:            m["state"],
		StateCode:        m["state_code"],
		PublicationCity:  m["publication_city"],
		Periodicity:      m["periodicity"],
	}

	return domtitle.Reconstruct(
		m["id"], attrs,
		m["normalized"], m["soundex"], m["metaphone"],
		similarity, verificationProb, verified,
		m["created_by"], createdAt, updatedAt,
	), nil
}
