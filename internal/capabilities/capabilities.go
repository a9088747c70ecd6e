// Package capabilities describes what a given MA5801-family firmware
// build supports, trimmed from the teacher's multi-vendor
// VendorCapabilities matrix (cli/capabilities.go) down to the one vendor
// and device family this system manages (see SPEC_FULL.md SUPPLEMENTED
// FEATURES §1).
package capabilities

// AutofindVariant selects which autofind command the Fetch Orchestrator
// issues, resolving the open question in spec §9 on a per-device basis.
type AutofindVariant string

const (
	// AutofindInterfaceScoped is "display ont autofind 0" inside
	// "interface gpon <F/S>". This is the variant this system issues by
	// default (see DESIGN.md Open Question 2).
	AutofindInterfaceScoped AutofindVariant = "interface"
	// AutofindGlobal is "display ont autofind all" without entering an
	// interface first. Supported by the matrix but not issued by default.
	AutofindGlobal AutofindVariant = "all"
)

// MA5801Capabilities is the feature matrix for a Huawei MA5801-family OLT.
type MA5801Capabilities struct {
	Vendor   string `json:"vendor"`
	Model    string `json:"model"`
	Firmware string `json:"firmware,omitempty"`

	Autofind             AutofindVariant `json:"autofind"`
	SupportsManagementVlan bool          `json:"supportsManagementVlan"`
	SupportsTr069          bool          `json:"supportsTr069"`
	SupportsGeneralOnuType bool          `json:"supportsGeneralOnuType"`
	MaxOnuPerPort          int           `json:"maxOnuPerPort"`
	PortFormat             string        `json:"portFormat"` // always "frame/slot/port" for this family
}

// Default returns the capability set used when no firmware probe has run.
func Default() MA5801Capabilities {
	return MA5801Capabilities{
		Vendor:                 "huawei",
		Model:                  "MA5801",
		Autofind:               AutofindInterfaceScoped,
		SupportsManagementVlan: true,
		SupportsTr069:          true,
		SupportsGeneralOnuType: true,
		MaxOnuPerPort:          128,
		PortFormat:             "frame/slot/port",
	}
}
