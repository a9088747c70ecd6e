// Package model holds the domain records projected from the OLT and the
// records persisted for users, sessions, and connection credentials.
package model

import (
	"strconv"
	"time"
)

// Protocol is the wire protocol used to reach the OLT.
type Protocol string

const (
	ProtocolSSH    Protocol = "ssh"
	ProtocolTelnet Protocol = "telnet"
)

// Credential is a stored connection profile for a single OLT device.
// At most one credential has IsActive set; enforced by the store, not here.
type Credential struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Host            string     `json:"host"`
	Port            int        `json:"port"`
	Username        string     `json:"username"`
	EncryptedPassword []byte   `json:"-"`
	Protocol        Protocol   `json:"protocol"`
	IsActive        bool       `json:"isActive"`
	IsConnected     bool       `json:"isConnected"`
	LastConnected   *time.Time `json:"lastConnected,omitempty"`
}

// OLTInfo is transient, derived fresh on every GetOltInfo call, never stored.
type OLTInfo struct {
	Product     string `json:"product"`
	Version     string `json:"version"`
	Patch       string `json:"patch"`
	Uptime      string `json:"uptime"`
	Connected   bool   `json:"connected"`
	Hostname    string `json:"hostname,omitempty"`
	Model       string `json:"model,omitempty"`
	SerialNumber string `json:"serialNumber,omitempty"`
}

// OnuType distinguishes OMCI-managed Huawei ONTs from generically
// authenticated ("general") devices bound by password/MAC.
type OnuType string

const (
	OnuTypeHuawei  OnuType = "huawei"
	OnuTypeGeneral OnuType = "general"
)

// UnboundOnu is an autofind record: an ONU the OLT has detected optically
// but which has not yet been provisioned. Keyed by SerialNumber.
type UnboundOnu struct {
	SerialNumber string     `json:"serialNumber"`
	Port         string     `json:"port"`
	EquipmentID  string     `json:"equipmentId"`
	SoftwareVersion string  `json:"softwareVersion,omitempty"`
	DiscoveredAt *time.Time `json:"discoveredAt,omitempty"`
	Password     string     `json:"-"`
}

// RunStatus is the operational state of a bound ONU as reported by the OLT.
type RunStatus string

const (
	RunStatusOnline   RunStatus = "online"
	RunStatusOffline  RunStatus = "offline"
	RunStatusLOS      RunStatus = "los"
	RunStatusAuthFail RunStatus = "auth-fail"
)

// ConfigState is the provisioning state of a bound ONU.
type ConfigState string

const (
	ConfigStateNormal  ConfigState = "normal"
	ConfigStateInitial ConfigState = "initial"
	ConfigStateFailed  ConfigState = "failed"
)

// BoundOnu is a provisioned ONU. Keyed by (Port, OnuID); SerialNumber is
// unique across both the bound and unbound sets.
type BoundOnu struct {
	ID               string      `json:"id"` // synthetic "port-onuId"
	SerialNumber     string      `json:"serialNumber"`
	Port             string      `json:"port"`
	OnuID            int         `json:"onuId"` // 0..127
	Description      string      `json:"description"`
	LineProfileID    int         `json:"lineProfileId"`
	ServiceProfileID int         `json:"serviceProfileId"`
	RunStatus        RunStatus   `json:"runStatus"`
	ConfigState      ConfigState `json:"configState"`
	RxPower          *float64    `json:"rxPower,omitempty"`
	TxPower          *float64    `json:"txPower,omitempty"`
	Distance         *float64    `json:"distance,omitempty"`
	VlanID           *int        `json:"vlanId,omitempty"`
	ManagementVlanID *int        `json:"managementVlanId,omitempty"`
	GemPortID        *int        `json:"gemPortId,omitempty"`
	BoundAt          time.Time   `json:"boundAt"`
	PPPoEUsername    string      `json:"pppoeUsername,omitempty"`
	PPPoEPassword    string      `json:"-"`
	WifiSSID         string      `json:"wifiSsid,omitempty"`
	WifiPassword     string      `json:"-"`
	Tr069ProfileName string      `json:"tr069ProfileName,omitempty"`
	OnuType          OnuType     `json:"onuType,omitempty"`
}

// Key returns the (port, onuId) composite key used by the Inventory Cache.
func (b BoundOnu) Key() string { return b.Port + "#" + strconv.Itoa(b.OnuID) }

// LineProfile describes a GPON line profile (T-CONT/GEM mapping).
type LineProfile struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TContID     int    `json:"tcontId"`
	GemPortID   int    `json:"gemPortId"`
	MappingMode string `json:"mappingMode"`
}

// ServiceProfile describes a GPON service profile.
type ServiceProfile struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PortCount   int    `json:"portCount"`
	PortType    string `json:"portType"`
}

// VlanType is the Huawei VLAN attribute.
type VlanType string

const (
	VlanTypeSmart    VlanType = "smart"
	VlanTypeMux      VlanType = "mux"
	VlanTypeStandard VlanType = "standard"
)

// Vlan is a VLAN known to the OLT. InUse is a monotonic "has ever been
// bound" flag (see DESIGN.md Open Question 1) — it is set on first bind
// and deliberately never cleared, since a VLAN may serve many ONUs.
type Vlan struct {
	ID          int      `json:"id"` // 1..4094
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        VlanType `json:"type"`
	Tagged      bool     `json:"tagged"`
	InUse       bool     `json:"inUse"`
}

// Tr069Profile is an ACS profile an ONU can be associated with.
type Tr069Profile struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	AcsURL           string `json:"acsUrl"`
	PeriodicInterval *int   `json:"periodicInterval,omitempty"`
	Username         string `json:"username,omitempty"`
	Password         string `json:"-"`
}

// Role is a user's permission tier.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
)

// User is a local operator account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Email        string    `json:"email"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	CreatedBy    string    `json:"createdBy,omitempty"`
}

// Session is a logged-in operator's opaque-token session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session has passed its ExpiresAt.
func (s Session) Expired(now time.Time) bool { return now.After(s.ExpiresAt) }

// RefreshStatus is the singleton fetch-orchestrator status record.
type RefreshStatus struct {
	LastRefreshed *time.Time `json:"lastRefreshed,omitempty"`
	InProgress    bool       `json:"inProgress"`
	Error         string     `json:"error,omitempty"`
}

// BindRequest is the input to the Bind/Unbind Controller's Bind operation.
type BindRequest struct {
	SerialNumber       string  `json:"serialNumber"`
	GponPort           string  `json:"gponPort"`
	LineProfileID      int     `json:"lineProfileId"`
	ServiceProfileID   int     `json:"serviceProfileId"`
	Description        string  `json:"description"`
	VlanID             *int    `json:"vlanId,omitempty"`
	ManagementVlanID   *int    `json:"managementVlanId,omitempty"`
	PPPoEUsername      string  `json:"pppoeUsername,omitempty"`
	PPPoEPassword      string  `json:"pppoePassword,omitempty"`
	Tr069ProfileName   string  `json:"tr069ProfileName,omitempty"`
	OnuType            OnuType `json:"onuType"`
	OnuPassword        string  `json:"onuPassword,omitempty"`
}

// UnbindRequest is the input to the Bind/Unbind Controller's Unbind operation.
type UnbindRequest struct {
	OnuID       int    `json:"onuId"`
	Port        string `json:"port"`
	CleanConfig bool   `json:"cleanConfig"`
	Force       bool   `json:"force"`
}

// VerifyResult is the non-mutating diagnostic record returned by Verify.
type VerifyResult struct {
	SerialNumber string   `json:"serialNumber"`
	State        string   `json:"state"` // "bound" | "unbound" | "unknown"
	Port         string   `json:"port,omitempty"`
	OnuID        *int     `json:"onuId,omitempty"`
	RxPower      *float64 `json:"rxPower,omitempty"`
	VlanAttached bool     `json:"vlanAttached"`
}
