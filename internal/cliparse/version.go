package cliparse

import (
	"regexp"
	"strings"

	"github.com/nanoncore/ma5801-olt-manager/internal/model"
)

var (
	productRE = regexp.MustCompile(`(MA\d+[A-Z0-9-]+)`)
	versionRE = regexp.MustCompile(`(V\d+R\d+C\d+)`)
	patchRE   = regexp.MustCompile(`(SPC\d+)`)
	uptimeRE  = regexp.MustCompile(`(?i)(?:uptime is|Run time\s*:)\s*(.+)`)
)

// ParseVersion parses the reply to "display version" into an OLTInfo.
// Missing fields default to "Unknown"/"-" per spec §4.D.
func ParseVersion(output string) model.OLTInfo {
	info := model.OLTInfo{
		Product: "Unknown",
		Version: "Unknown",
		Patch:   "-",
		Uptime:  "-",
		Connected: true,
	}
	if m := productRE.FindStringSubmatch(output); m != nil {
		info.Product = m[1]
	}
	if m := versionRE.FindStringSubmatch(output); m != nil {
		info.Version = m[1]
	}
	if m := patchRE.FindStringSubmatch(output); m != nil {
		info.Patch = m[1]
	}
	if m := uptimeRE.FindStringSubmatch(output); m != nil {
		info.Uptime = strings.TrimSpace(m[1])
	}
	return info
}
