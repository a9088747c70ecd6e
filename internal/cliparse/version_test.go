package cliparse

import "testing"

func TestParseVersion(t *testing.T) {
	output := `
Huawei Versatile Routing Platform Software
MA5801-GP16  V3R017C10S120
PATCH SPC200
Run time : 35 days, 6 hours, 12 minutes
`
	info := ParseVersion(output)
	if info.Product != "MA5801-GP16" {
		t.Errorf("Product = %q, want MA5801-GP16", info.Product)
	}
	if info.Version != "V3R017C10" {
		t.Errorf("Version = %q, want V3R017C10", info.Version)
	}
	if info.Patch != "SPC200" {
		t.Errorf("Patch = %q, want SPC200", info.Patch)
	}
	if info.Uptime != "35 days, 6 hours, 12 minutes" {
		t.Errorf("Uptime = %q", info.Uptime)
	}
	if !info.Connected {
		t.Error("Connected = false, want true")
	}
}

func TestParseVersionDefaults(t *testing.T) {
	info := ParseVersion("garbage output with nothing useful")
	if info.Product != "Unknown" || info.Version != "Unknown" {
		t.Errorf("expected Unknown defaults, got %+v", info)
	}
	if info.Patch != "-" || info.Uptime != "-" {
		t.Errorf("expected '-' defaults, got %+v", info)
	}
}
