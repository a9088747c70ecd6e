package cliparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nanoncore/ma5801-olt-manager/internal/model"
)

var profileRowRE = regexp.MustCompile(`^(\d+)\s+(\S+)`)

// ParseLineProfiles parses "display ont-lineprofile gpon all" rows of the
// form "id name", skipping header/rule lines.
func ParseLineProfiles(output string) []model.LineProfile {
	var out []model.LineProfile
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(strings.TrimRight(line, "\r"))
		if trimmed == "" || looksLikeHeaderOrRule(trimmed) {
			continue
		}
		m := profileRowRE.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out = append(out, model.LineProfile{ID: id, Name: m[2]})
	}
	return out
}

// ParseServiceProfiles parses "display ont-srvprofile gpon all" rows of
// the same "id name" shape.
func ParseServiceProfiles(output string) []model.ServiceProfile {
	var out []model.ServiceProfile
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(strings.TrimRight(line, "\r"))
		if trimmed == "" || looksLikeHeaderOrRule(trimmed) {
			continue
		}
		m := profileRowRE.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out = append(out, model.ServiceProfile{ID: id, Name: m[2]})
	}
	return out
}
