package cliparse

import (
	"regexp"
	"strings"

	"github.com/nanoncore/ma5801-olt-manager/internal/model"
)

// fullRowRE matches the primary autofind table style, where each row
// starts with an F/S/P triple (tolerating inserted whitespace), e.g.
// "0/ 1/0 485754430A1B2C3D HG8310M HWTC V3R017C10S120".
var fullRowRE = regexp.MustCompile(`^(\d+\s*/\s*\d+\s*/\s*\d+)\s+([0-9A-Fa-f]{16})\s*(.*)$`)

// indexRowRE matches the alternate "index SN" table style emitted inside
// an already-entered interface gpon <F/S> context, where each row is just
// "<onuIndex>  <serial>  ...".
var indexRowRE = regexp.MustCompile(`^(\d+)\s+([0-9A-Fa-f]{16})\s*(.*)$`)

// snColonRE matches the alternate "SN : XXXX" table style.
var snColonRE = regexp.MustCompile(`(?i)SN\s*:\s*([0-9A-Fa-f]{16})`)

// ParseAutofind parses the reply to "display ont autofind 0" (or "all").
// fsContext is the "F/S" the command was issued under (e.g. "0/1"),
// needed to complete rows from the index-only table style into a full
// F/S/P port string. Unparseable rows are skipped silently; duplicate
// serials (by whichever row matched first) are discarded.
func ParseAutofind(output, fsContext string) []model.UnboundOnu {
	seen := make(map[string]bool)
	var results []model.UnboundOnu

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || looksLikeHeaderOrRule(trimmed) {
			continue
		}

		var sn, port, rest string

		if m := fullRowRE.FindStringSubmatch(trimmed); m != nil {
			port = NormalizePort(m[1])
			sn = m[2]
			rest = m[3]
		} else if m := indexRowRE.FindStringSubmatch(trimmed); m != nil && fsContext != "" {
			port = fsContext + "/" + m[1]
			sn = m[2]
			rest = m[3]
		} else if m := snColonRE.FindStringSubmatch(trimmed); m != nil {
			sn = m[1]
			if fsContext != "" {
				port = fsContext + "/0"
			}
		} else {
			continue
		}

		sn = strings.ToUpper(sn)
		if seen[sn] {
			continue
		}
		seen[sn] = true

		equipmentID, swVersion := splitEquipmentAndVersion(rest)
		results = append(results, model.UnboundOnu{
			SerialNumber:    sn,
			Port:            port,
			EquipmentID:     equipmentID,
			SoftwareVersion: swVersion,
		})
	}
	return results
}

func looksLikeHeaderOrRule(line string) bool {
	lower := strings.ToLower(line)
	if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "=") {
		return true
	}
	return strings.Contains(lower, "f/s/p") && strings.Contains(lower, "sn")
}

func splitEquipmentAndVersion(rest string) (equipmentID, softwareVersion string) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "Unknown", ""
	}
	equipmentID = fields[0]
	if len(fields) > 1 {
		softwareVersion = strings.Join(fields[1:], " ")
	}
	return equipmentID, softwareVersion
}
