package cliparse

import (
	"regexp"
	"strconv"
	"strings"
)

// DescriptionRecord associates a description with a (Port, OnuID) pair,
// parsed from "display ont info 0 all detail" blocks where "F/S/P : x/y/z"
// precedes "ONT-ID : n" and, further below, "Description : ...".
type DescriptionRecord struct {
	Port        string
	OnuID       int
	Description string
}

var (
	fspFieldRE  = regexp.MustCompile(`(?i)F\s*/\s*S\s*/\s*P\s*:\s*(\d+\s*/\s*\d+\s*/\s*\d+)`)
	ontIDFieldRE = regexp.MustCompile(`(?i)ONT-ID\s*:\s*(\d+)`)
	descFieldRE  = regexp.MustCompile(`(?i)Description\s*:\s*(.*)`)
)

// ParseOntDetail splits the "display ont info 0 all detail" output into
// per-ONT blocks (delimited by successive "F/S/P :" lines) and extracts
// the description of each.
func ParseOntDetail(output string) []DescriptionRecord {
	var records []DescriptionRecord
	var curPort string
	var curOnuID int
	haveOnu := false

	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(strings.TrimRight(line, "\r"))
		if m := fspFieldRE.FindStringSubmatch(trimmed); m != nil {
			curPort = NormalizePort(m[1])
			haveOnu = false
			continue
		}
		if m := ontIDFieldRE.FindStringSubmatch(trimmed); m != nil {
			if id, err := strconv.Atoi(m[1]); err == nil {
				curOnuID = id
				haveOnu = true
			}
			continue
		}
		if m := descFieldRE.FindStringSubmatch(trimmed); m != nil && haveOnu && curPort != "" {
			records = append(records, DescriptionRecord{
				Port:        curPort,
				OnuID:       curOnuID,
				Description: strings.TrimSpace(m[1]),
			})
			// A block contributes at most one description; wait for the
			// next F/S/P line before accepting another.
			haveOnu = false
		}
	}
	return records
}
