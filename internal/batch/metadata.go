package batch

import (
	"encoding/json"
	"fmt"
	"time"
)

// MemberMeta is one card's entry in the batch manifest.
type MemberMeta struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	Jti      string `json:"jti"`
	Expiry   string `json:"expiry"` // ISO-8601
	Filename string `json:"filename"`
}

// Metadata is the metadata.json document included in every batch ZIP, the
// operator's record of which jti belongs to which member.
type Metadata struct {
	Version     string       `json:"version"`
	GeneratedAt string       `json:"generated_at"`
	SchoolYear  string       `json:"school_year"`
	Issuer      string       `json:"issuer"`
	TotalCards  int          `json:"total_cards"`
	Members     []MemberMeta `json:"members"`
}

// NewMetadata assembles the manifest for a finished batch.
func NewMetadata(members []MemberMeta, iss string) Metadata {
	now := time.Now()
	if members == nil {
		members = []MemberMeta{}
	}
	return Metadata{
		Version:     "1.0",
		GeneratedAt: now.UTC().Format(time.RFC3339),
		SchoolYear:  schoolYear(now),
		Issuer:      iss,
		TotalCards:  len(members),
		Members:     members,
	}
}

// schoolYear labels the academic year, which rolls over in September.
func schoolYear(now time.Time) string {
	year := now.Year()
	if now.Month() >= time.September {
		return fmt.Sprintf("%d-%d", year, year+1)
	}
	return fmt.Sprintf("%d-%d", year-1, year)
}

// JSON renders the manifest pretty-printed.
func (m Metadata) JSON() (string, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return string(b), nil
}
