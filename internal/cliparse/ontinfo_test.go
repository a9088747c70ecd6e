package cliparse

import (
	"testing"

	"github.com/nanoncore/ma5801-olt-manager/internal/model"
)

func TestParseOntInfo(t *testing.T) {
	output := `
F/S/P    ONT  SN                active runstate configstate matchstate
------------------------------------------------------------------------
0/ 1/0   0    485754430A1B2C3D  active online   normal      match
0/1/1    1    A1B2C3D485754430  active offline  normal      match
`
	got := ParseOntInfo(output)
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	first := got[0]
	if first.Port != "0/1/0" || first.OnuID != 0 || first.SerialNumber != "485754430A1B2C3D" {
		t.Errorf("unexpected first row: %+v", first)
	}
	if first.RunStatus != model.RunStatusOnline {
		t.Errorf("RunStatus = %v, want online", first.RunStatus)
	}
	if first.ConfigState != model.ConfigStateNormal {
		t.Errorf("ConfigState = %v, want normal", first.ConfigState)
	}

	second := got[1]
	if second.Port != "0/1/1" || second.OnuID != 1 {
		t.Errorf("unexpected second row: %+v", second)
	}
	if second.RunStatus != model.RunStatusOffline {
		t.Errorf("RunStatus = %v, want offline", second.RunStatus)
	}
}

func TestParseOntInfoSkipsShortRows(t *testing.T) {
	if got := ParseOntInfo("0/1/0 0\n"); len(got) != 0 {
		t.Fatalf("got %d rows, want 0 for a truncated row", len(got))
	}
}
