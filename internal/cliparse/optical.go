package cliparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// OpticalSample is a single optical reading matched back to a BoundOnu by
// (Port, OnuID), or by OnuID alone when Port is implied by an already
// entered interface context.
type OpticalSample struct {
	Port        string // empty when the short form is used
	OnuID       int
	RxPower     float64
	TxPower     float64
	OltRxPower  float64
	Temperature float64
	HasRx       bool
	HasTx       bool
}

// longFormRE matches "F/S/P onu-id rx tx ...", the form emitted by
// "display ont optical-info 0 all" outside an interface context.
var longFormRE = regexp.MustCompile(`^(\d+\s*/\s*\d+\s*/\s*\d+)\s+(\d+)\s+([-\d.]+|NA|N/A)\s+([-\d.]+|NA|N/A)`)

// shortFormRE matches "onu-id rx tx olt-rx temperature ...", emitted
// inside an already entered interface gpon <F/S> context.
var shortFormRE = regexp.MustCompile(`^(\d+)\s+([-\d.]+|NA|N/A)\s+([-\d.]+|NA|N/A)\s+([-\d.]+|NA|N/A)\s+([-\d.]+|NA|N/A)`)

// ParseOpticalInfo parses "display ont optical-info 0 all" in either its
// long or short form. Unparseable floats leave the corresponding Has*
// flag false rather than failing the whole row.
func ParseOpticalInfo(output string) []OpticalSample {
	var out []OpticalSample
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(strings.TrimRight(line, "\r"))
		if trimmed == "" || looksLikeHeaderOrRule(trimmed) {
			continue
		}
		if m := longFormRE.FindStringSubmatch(trimmed); m != nil {
			onuID, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			rx, hasRx := parseOpticalFloat(m[3])
			tx, hasTx := parseOpticalFloat(m[4])
			out = append(out, OpticalSample{
				Port: NormalizePort(m[1]), OnuID: onuID,
				RxPower: rx, HasRx: hasRx, TxPower: tx, HasTx: hasTx,
			})
			continue
		}
		if m := shortFormRE.FindStringSubmatch(trimmed); m != nil {
			onuID, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			rx, hasRx := parseOpticalFloat(m[2])
			tx, hasTx := parseOpticalFloat(m[3])
			oltRx, hasOltRx := parseOpticalFloat(m[4])
			temp, hasTemp := parseOpticalFloat(m[5])
			sample := OpticalSample{OnuID: onuID, RxPower: rx, HasRx: hasRx, TxPower: tx, HasTx: hasTx}
			if hasOltRx {
				sample.OltRxPower = oltRx
			}
			if hasTemp {
				sample.Temperature = temp
			}
			out = append(out, sample)
		}
	}
	return out
}

func parseOpticalFloat(raw string) (float64, bool) {
	if raw == "NA" || raw == "N/A" {
		return math.NaN(), false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}
