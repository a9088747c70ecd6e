package cliparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nanoncore/ma5801-olt-manager/internal/model"
)

// vlanRowRE matches "id type(smart|standard|mux|super) attribute ..."
// rows of "display vlan all". "super" is accepted in the grammar but
// mapped to standard: the spec's Vlan.Type enum only names
// smart/mux/standard, and "super" VLANs behave like standard VLANs for
// every operation this system performs on them.
var vlanRowRE = regexp.MustCompile(`(?i)^(\d+)\s+(smart|standard|mux|super)\b\s*(.*)$`)

// ParseVlanAll parses "display vlan all" rows. Only id values in [1,4094]
// are accepted per spec §4.D; the id must additionally be < 4095 (VLAN ID
// 4095 is reserved and never emitted by the device in this table).
func ParseVlanAll(output string) []model.Vlan {
	var out []model.Vlan
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(strings.TrimRight(line, "\r"))
		if trimmed == "" || looksLikeHeaderOrRule(trimmed) {
			continue
		}
		m := vlanRowRE.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil || id < 1 || id > 4094 {
			continue
		}
		vlanType := model.VlanTypeStandard
		switch strings.ToLower(m[2]) {
		case "smart":
			vlanType = model.VlanTypeSmart
		case "mux":
			vlanType = model.VlanTypeMux
		}
		out = append(out, model.Vlan{ID: id, Type: vlanType})
	}
	return out
}
