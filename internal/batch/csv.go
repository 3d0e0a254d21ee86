// Package batch turns a member CSV into a ZIP of signed QR cards.
package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ampa-nova/carnet/internal/errs"
)

// Member is one validated CSV row ready for issuance.
type Member struct {
	FullName string
	MemberID string
	Expiry   time.Time
}

// RowError reports one rejected CSV row. LineNumber is 1-based and counts the
// header line.
type RowError struct {
	LineNumber int
	Message    string
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.LineNumber, e.Message)
}

// ParseResult separates usable rows from rejected ones. Valid rows proceed to
// issuance even when other rows fail; the operator fixes and re-imports the
// rest.
type ParseResult struct {
	Valid  []Member
	Errors []RowError
}

var dateLayouts = []string{
	"2006-01-02", // 2025-06-30
	"02/01/2006", // 30/06/2025
	"02-01-2006", // 30-06-2025
	"2/1/2006",   // 30/6/2025 or 1/6/2025
}

// ParseDateFlexible accepts the date formats members' spreadsheets actually
// produce. Returns the zero time when nothing matches.
func ParseDateFlexible(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ParseCSV reads a member roster with a full_name,member_id,expiry_date
// header. Per-row failures accumulate in the result; only an unreadable file
// or missing header column is a hard error.
func ParseCSV(r io.Reader) (*ParseResult, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read CSV header: %v", errs.ErrValidation, err)
	}
	col := map[string]int{}
	for i, h := range head {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"full_name", "member_id", "expiry_date"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%w: CSV missing required column %q", errs.ErrValidation, required)
		}
	}

	res := &ParseResult{}
	seen := map[string]int{} // member_id -> first line
	line := 1                // header consumed
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			res.Errors = append(res.Errors, RowError{LineNumber: line, Message: err.Error()})
			continue
		}

		field := func(name string) string {
			i := col[name]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		m, rowErrs := validateRow(field("full_name"), field("member_id"), field("expiry_date"))
		if first, dup := seen[m.MemberID]; dup && m.MemberID != "" {
			rowErrs = append(rowErrs, fmt.Sprintf("duplicate member_id %q (first used on line %d)", m.MemberID, first))
		}
		if len(rowErrs) > 0 {
			res.Errors = append(res.Errors, RowError{LineNumber: line, Message: strings.Join(rowErrs, "; ")})
			continue
		}
		seen[m.MemberID] = line
		res.Valid = append(res.Valid, m)
	}
	return res, nil
}

func validateRow(fullName, memberID, expiryDate string) (Member, []string) {
	var rowErrs []string
	if fullName == "" {
		rowErrs = append(rowErrs, "missing full_name")
	}
	if memberID == "" {
		rowErrs = append(rowErrs, "missing member_id")
	}
	var expiry time.Time
	if expiryDate == "" {
		rowErrs = append(rowErrs, "missing expiry_date")
	} else {
		expiry = ParseDateFlexible(expiryDate)
		if expiry.IsZero() {
			rowErrs = append(rowErrs, fmt.Sprintf("invalid date format %q: use YYYY-MM-DD, DD/MM/YYYY, or DD-MM-YYYY", expiryDate))
		} else if !expiry.After(time.Now()) {
			rowErrs = append(rowErrs, "expiry date must be in the future")
		}
	}
	return Member{FullName: fullName, MemberID: memberID, Expiry: expiry}, rowErrs
}
