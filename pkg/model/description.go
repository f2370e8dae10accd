package model

import (
	"regexp"
	"strconv"
	"strings"
)

// Description is a UniRef annotation split on its key=value suffix, e.g.
// "Cytochrome b n=2 Tax=Homo sapiens TaxID=9606 RepID=CYB_HUMAN".
type Description struct {
	Name        string `json:"name"`
	MemberCount int    `json:"member_count,omitempty"`
	Taxon       string `json:"taxon,omitempty"`
	TaxID       string `json:"tax_id,omitempty"`
	RepID       string `json:"rep_id,omitempty"`
}

var descriptionKeyRegex = regexp.MustCompile(`(?:^|\s)(n|Tax|TaxID|RepID)=`)

// ParseDescription never fails: unknown layouts end up entirely in Name.
func ParseDescription(raw string) Description {
	raw = strings.TrimSpace(raw)
	locs := descriptionKeyRegex.FindAllStringSubmatchIndex(raw, -1)
	if len(locs) == 0 {
		return Description{Name: raw}
	}

	d := Description{Name: strings.TrimSpace(raw[:locs[0][0]])}

	for i, loc := range locs {
		key := raw[loc[2]:loc[3]]
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		value := strings.TrimSpace(raw[loc[1]:end])

		switch key {
		case "n":
			if n, err := strconv.Atoi(value); err == nil {
				d.MemberCount = n
			}
		case "Tax":
			d.Taxon = value
		case "TaxID":
			d.TaxID = value
		case "RepID":
			d.RepID = value
		}
	}

	return d
}

// ProteinName is the lower-cased name part, used to tell whether a row mixes protein families.
func (d Description) ProteinName() string {
	if d.Name == "" {
		return "unknown"
	}
	return strings.ToLower(d.Name)
}
