package batch

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/klauspost/compress/zip"
	"golang.org/x/text/unicode/norm"

	"github.com/ampa-nova/carnet/internal/card"
	"github.com/ampa-nova/carnet/internal/issuer"
)

// Progress reports batch advancement. Calls are monotonically non-decreasing
// in current and reach current == total exactly once.
type Progress func(current, total int)

// sanitizeName lowercases, strips accents, and reduces a member name to
// [a-z0-9_] for use in filenames.
func sanitizeName(name string) string {
	decomposed := norm.NFD.String(strings.ToLower(name))
	var sb strings.Builder
	pendingSep := false
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// accent mark stripped, base letter kept
		case unicode.IsSpace(r):
			pendingSep = true
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			if pendingSep {
				sb.WriteByte('_')
				pendingSep = false
			}
			sb.WriteRune(r)
		}
	}
	if pendingSep {
		sb.WriteByte('_')
	}
	return sb.String()
}

// Filename names a member's card PNG: {member_id}_{sanitized_name}.png.
func Filename(memberID, fullName string) string {
	return fmt.Sprintf("%s_%s.png", memberID, sanitizeName(fullName))
}

// Generator issues a batch of cards and packages them as a ZIP.
type Generator struct {
	Issuer  *issuer.Issuer
	BaseURL string // verification page the QR codes point at
	QRSize  int    // pixels; 0 means card.DefaultSize
}

// Generate signs one token per member, renders each as a QR card PNG, and
// writes a ZIP with the cards plus metadata.json to w. Issuance is sequential
// (single signing key); ctx is checked between cards as the cooperative
// cancellation point. Returns the manifest that was written.
func (g *Generator) Generate(ctx context.Context, members []Member, privateKey []byte, onProgress Progress, w io.Writer) (Metadata, error) {
	zw := zip.NewWriter(w)
	metas := make([]MemberMeta, 0, len(members))
	total := len(members)

	for i, m := range members {
		if err := ctx.Err(); err != nil {
			return Metadata{}, fmt.Errorf("batch canceled after %d of %d cards: %w", i, total, err)
		}

		payload, err := g.Issuer.CreatePayload(m.FullName, m.MemberID, m.Expiry)
		if err != nil {
			return Metadata{}, fmt.Errorf("member %s: %w", m.MemberID, err)
		}
		token, err := g.Issuer.Issue(payload, privateKey)
		if err != nil {
			return Metadata{}, fmt.Errorf("member %s: %w", m.MemberID, err)
		}
		png, err := card.RenderPNG(g.BaseURL, token, g.QRSize)
		if err != nil {
			return Metadata{}, fmt.Errorf("member %s: %w", m.MemberID, err)
		}

		filename := Filename(m.MemberID, m.FullName)
		f, err := zw.Create(filename)
		if err != nil {
			return Metadata{}, fmt.Errorf("zip entry %s: %w", filename, err)
		}
		if _, err := f.Write(png); err != nil {
			return Metadata{}, fmt.Errorf("zip entry %s: %w", filename, err)
		}

		metas = append(metas, MemberMeta{
			MemberID: m.MemberID,
			Name:     m.FullName,
			Jti:      payload.Jti,
			Expiry:   m.Expiry.UTC().Format(time.RFC3339),
			Filename: filename,
		})
		if onProgress != nil {
			onProgress(i+1, total)
		}
	}

	meta := NewMetadata(metas, g.Issuer.Issuer())
	metaJSON, err := meta.JSON()
	if err != nil {
		return Metadata{}, err
	}
	f, err := zw.Create("metadata.json")
	if err != nil {
		return Metadata{}, fmt.Errorf("zip entry metadata.json: %w", err)
	}
	if _, err := f.Write([]byte(metaJSON)); err != nil {
		return Metadata{}, fmt.Errorf("zip entry metadata.json: %w", err)
	}
	if err := zw.Close(); err != nil {
		return Metadata{}, fmt.Errorf("finalize zip: %w", err)
	}
	return meta, nil
}
