package cliparse

import (
	"strconv"
	"strings"

	"github.com/nanoncore/ma5801-olt-manager/internal/model"
)

// ontInfoRow captures the row shape of "display ont info 0 all":
// "F/S/P onu-id SN controlFlag runState configState matchState ...".
type ontInfoRow struct {
	Port        string
	OnuID       int
	SN          string
	RunState    string
	ConfigState string
}

// ParseOntInfo parses "display ont info 0 all" into BoundOnu skeletons
// (SerialNumber/Port/OnuID/RunStatus/ConfigState only — profile ids,
// description, and optical fields are merged in by later parsers via the
// Fetch Orchestrator). Rows that don't fit the grammar are skipped.
func ParseOntInfo(output string) []model.BoundOnu {
	var out []model.BoundOnu
	for _, line := range strings.Split(output, "\n") {
		row, ok := parseOntInfoRow(line)
		if !ok {
			continue
		}
		out = append(out, model.BoundOnu{
			SerialNumber: strings.ToUpper(row.SN),
			Port:         row.Port,
			OnuID:        row.OnuID,
			RunStatus:    mapRunStatus(row.RunState),
			ConfigState:  mapConfigState(row.ConfigState),
		})
	}
	return out
}

func parseOntInfoRow(line string) (ontInfoRow, bool) {
	trimmed := strings.TrimSpace(strings.TrimRight(line, "\r"))
	if trimmed == "" || looksLikeHeaderOrRule(trimmed) {
		return ontInfoRow{}, false
	}
	fields := strings.Fields(trimmed)
	if len(fields) < 5 {
		return ontInfoRow{}, false
	}
	m := fspSpacedAtStart(fields)
	if m == nil {
		return ontInfoRow{}, false
	}
	port, idx, rest := m.port, m.consumed, fields[m.consumed:]
	if len(rest) < 4 {
		return ontInfoRow{}, false
	}
	onuID, err := strconv.Atoi(rest[0])
	if err != nil {
		return ontInfoRow{}, false
	}
	sn := rest[1]
	runState := rest[3]
	configState := ""
	if len(rest) > 4 {
		configState = rest[4]
	}
	_ = idx
	return ontInfoRow{Port: port, OnuID: onuID, SN: sn, RunState: runState, ConfigState: configState}, true
}

type fspMatch struct {
	port     string
	consumed int
}

// fspSpacedAtStart reconstructs an F/S/P triple from the first 1-5 fields,
// since the device sometimes splits it across tokens when whitespace is
// inserted inside the triple (e.g. "0/", "1/0").
func fspSpacedAtStart(fields []string) *fspMatch {
	for n := 1; n <= 5 && n <= len(fields); n++ {
		candidate := strings.Join(fields[:n], "")
		if fspExact.MatchString(candidate) {
			return &fspMatch{port: candidate, consumed: n}
		}
	}
	return nil
}

func mapRunStatus(raw string) model.RunStatus {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "los"), strings.Contains(lower, "dying"):
		return model.RunStatusLOS
	case strings.Contains(lower, "online"):
		return model.RunStatusOnline
	default:
		return model.RunStatusOffline
	}
}

func mapConfigState(raw string) model.ConfigState {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "initial"):
		return model.ConfigStateInitial
	case strings.Contains(lower, "fail"):
		return model.ConfigStateFailed
	default:
		return model.ConfigStateNormal
	}
}
