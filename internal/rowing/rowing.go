// Package rowing holds the vocabulary shared by the activity and user services.
package rowing

import (
	"database/sql/driver"
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"
)

type Position string

const (
	PositionCox       Position = "COX"
	PositionCoach     Position = "COACH"
	PositionPort      Position = "PORT"
	PositionStarboard Position = "STARBOARD"
	PositionSculling  Position = "SCULLING"
)

func (p Position) Valid() bool {
	switch p {
	case PositionCox, PositionCoach, PositionPort, PositionStarboard, PositionSculling:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// ParsePositions normalises and validates a list of position names.
func ParsePositions(raw []string) ([]Position, error) {
	out := make([]Position, 0, len(raw))
	for _, r := range raw {
		p := Position(strings.ToUpper(strings.TrimSpace(r)))
		if !p.Valid() {
			return nil, fmt.Errorf("unknown position %q", r)
		}
		out = append(out, p)
	}
	return out, nil
}

func PositionStrings(ps []Position) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}

// Positions is stored as a TEXT[] column. Duplicates are allowed.
type Positions []Position

func (ps Positions) Value() (driver.Value, error) {
	if ps == nil {
		return "{}", nil
	}
	return pq.StringArray(PositionStrings(ps)).Value()
}

func (ps *Positions) Scan(src interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	if arr == nil {
		*ps = nil
		return nil
	}
	out := make(Positions, len(arr))
	for i, s := range arr {
		out[i] = Position(s)
	}
	*ps = out
	return nil
}

func (ps Positions) Contains(p Position) bool {
	for _, cur := range ps {
		if cur == p {
			return true
		}
	}
	return false
}

// RemoveFirst drops only the first occurrence of p.
func (ps Positions) RemoveFirst(p Position) (Positions, bool) {
	for i, cur := range ps {
		if cur == p {
			out := make(Positions, 0, len(ps)-1)
			out = append(out, ps[:i]...)
			return append(out, ps[i+1:]...), true
		}
	}
	return ps, false
}

// CertificateTable maps a boat type to the cox certificates that qualify for it.
type CertificateTable map[string][]string

// DefaultCertificates: a higher certificate also covers the smaller boats.
func DefaultCertificates() CertificateTable {
	return CertificateTable{
		"C4": {"C4", "4+", "8+"},
		"4+": {"4+", "8+"},
		"8+": {"8+"},
	}
}

// Qualifies reports whether any of certs allows coxing boatType.
// A boat type missing from the table requires a certificate with the same name.
func (t CertificateTable) Qualifies(boatType string, certs []string) bool {
	accepted, ok := t[boatType]
	if !ok {
		accepted = []string{boatType}
	}
	for _, c := range certs {
		for _, a := range accepted {
			if strings.EqualFold(c, a) {
				return true
			}
		}
	}
	return false
}

// ParseCertificateTable reads "C4=C4,4+,8+;4+=4+,8+" style definitions.
func ParseCertificateTable(s string) (CertificateTable, error) {
	table := CertificateTable{}
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		boat, certs, ok := strings.Cut(entry, "=")
		boat = strings.TrimSpace(boat)
		if !ok || boat == "" {
			return nil, fmt.Errorf("invalid certificate entry %q", entry)
		}
		for _, c := range strings.Split(certs, ",") {
			if c = strings.TrimSpace(c); c != "" {
				table[boat] = append(table[boat], c)
			}
		}
	}
	return table, nil
}

func (t CertificateTable) String() string {
	boats := make([]string, 0, len(t))
	for b := range t {
		boats = append(boats, b)
	}
	sort.Strings(boats)
	parts := make([]string, 0, len(boats))
	for _, b := range boats {
		parts = append(parts, b+"="+strings.Join(t[b], ","))
	}
	return strings.Join(parts, ";")
}
