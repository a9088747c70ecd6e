// Package inventory holds the in-memory projection of the OLT's current
// state. It is the sole owner of the UnboundOnu/BoundOnu/profile/VLAN
// collections (spec ownership rule: "no two components mutate the same
// field") — the Fetch Orchestrator publishes whole snapshots, the
// Bind/Unbind Controller applies single-record deltas, everyone else only
// reads.
package inventory

import (
	"sort"
	"strings"
	"sync"

	"github.com/nanoncore/ma5801-olt-manager/internal/model"
)

const maxOnuID = 127

// Snapshot is the unit of publication from a completed refresh: every
// collection is replaced together, under one lock, so readers never see a
// refresh half-applied.
type Snapshot struct {
	Unbound         []model.UnboundOnu
	Bound           []model.BoundOnu
	LineProfiles    []model.LineProfile
	ServiceProfiles []model.ServiceProfile
	Vlans           []model.Vlan
	Tr069Profiles   []model.Tr069Profile
}

// Cache is the Inventory Cache component (spec §4.F).
type Cache struct {
	mu sync.RWMutex

	unboundBySerial map[string]model.UnboundOnu
	boundByKey      map[string]model.BoundOnu
	boundBySerial   map[string]model.BoundOnu
	lineProfiles    []model.LineProfile
	serviceProfiles []model.ServiceProfile
	vlans           map[int]model.Vlan
	tr069Profiles   []model.Tr069Profile
}

func New() *Cache {
	return &Cache{
		unboundBySerial: make(map[string]model.UnboundOnu),
		boundByKey:      make(map[string]model.BoundOnu),
		boundBySerial:   make(map[string]model.BoundOnu),
		vlans:           make(map[int]model.Vlan),
	}
}

// Publish replaces every collection atomically. VLAN inUse flags from the
// previous snapshot are preserved (inUse is advisory and set by Bind, not
// derived from the device, so a fresh parse must not clobber it).
func (c *Cache) Publish(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	unbound := make(map[string]model.UnboundOnu, len(s.Unbound))
	for _, u := range s.Unbound {
		unbound[strings.ToUpper(u.SerialNumber)] = u
	}

	byKey := make(map[string]model.BoundOnu, len(s.Bound))
	bySerial := make(map[string]model.BoundOnu, len(s.Bound))
	for _, b := range s.Bound {
		byKey[b.Key()] = b
		bySerial[strings.ToUpper(b.SerialNumber)] = b
	}

	vlans := make(map[int]model.Vlan, len(s.Vlans))
	for _, v := range s.Vlans {
		if prev, ok := c.vlans[v.ID]; ok {
			v.InUse = prev.InUse
		}
		vlans[v.ID] = v
	}

	c.unboundBySerial = unbound
	c.boundByKey = byKey
	c.boundBySerial = bySerial
	c.lineProfiles = s.LineProfiles
	c.serviceProfiles = s.ServiceProfiles
	c.vlans = vlans
	c.tr069Profiles = s.Tr069Profiles
}

func (c *Cache) UnboundBySerial(sn string) (model.UnboundOnu, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.unboundBySerial[strings.ToUpper(sn)]
	return u, ok
}

func (c *Cache) BoundBySerial(sn string) (model.BoundOnu, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.boundBySerial[strings.ToUpper(sn)]
	return b, ok
}

func (c *Cache) BoundByKey(port string, onuID int) (model.BoundOnu, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.boundByKey[model.BoundOnu{Port: port, OnuID: onuID}.Key()]
	return b, ok
}

func (c *Cache) UnboundList() []model.UnboundOnu {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.UnboundOnu, 0, len(c.unboundBySerial))
	for _, u := range c.unboundBySerial {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SerialNumber < out[j].SerialNumber })
	return out
}

func (c *Cache) BoundList() []model.BoundOnu {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.BoundOnu, 0, len(c.boundByKey))
	for _, b := range c.boundByKey {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Cache) LineProfiles() []model.LineProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.LineProfile(nil), c.lineProfiles...)
}

func (c *Cache) ServiceProfiles() []model.ServiceProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.ServiceProfile(nil), c.serviceProfiles...)
}

func (c *Cache) Vlans() []model.Vlan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Vlan, 0, len(c.vlans))
	for _, v := range c.vlans {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Cache) VlanByID(id int) (model.Vlan, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vlans[id]
	return v, ok
}

func (c *Cache) Tr069Profiles() []model.Tr069Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Tr069Profile(nil), c.tr069Profiles...)
}

// GponPorts derives the "F/S/P" ports observed across both collections,
// deduplicated and sorted, for /api/gpon-ports. Ports with no bound or
// unbound ONU on them are not listed.
func (c *Cache) GponPorts() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]bool)
	for _, u := range c.unboundBySerial {
		seen[u.Port] = true
	}
	for _, b := range c.boundByKey {
		seen[b.Port] = true
	}
	out := make([]string, 0, len(seen))
	for port := range seen {
		if port != "" {
			out = append(out, port)
		}
	}
	sort.Strings(out)
	return out
}

// NextFreeOnuId scans [0,127] and returns the lowest id not occupied by a
// BoundOnu on port.
func (c *Cache) NextFreeOnuId(port string) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	taken := make(map[int]bool)
	for _, b := range c.boundByKey {
		if b.Port == port {
			taken[b.OnuID] = true
		}
	}
	for id := 0; id <= maxOnuID; id++ {
		if !taken[id] {
			return id, nil
		}
	}
	return 0, NewNoIdAvailableError(port)
}

// ApplyBind moves a record from unboundBySerial into the bound
// collections and, if the request attached a VLAN, marks it inUse. It is
// called by the Bind/Unbind Controller after the CLI command sequence
// succeeds — the cache never issues CLI commands itself.
func (c *Cache) ApplyBind(bound model.BoundOnu) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.unboundBySerial, strings.ToUpper(bound.SerialNumber))
	c.boundByKey[bound.Key()] = bound
	c.boundBySerial[strings.ToUpper(bound.SerialNumber)] = bound
	if bound.VlanID != nil {
		if v, ok := c.vlans[*bound.VlanID]; ok {
			v.InUse = true
			c.vlans[*bound.VlanID] = v
		}
	}
}

// ApplyUnbind removes the (port, onuId) record from the bound
// collections. VLAN inUse is never cleared (advisory, shared VLANs).
func (c *Cache) ApplyUnbind(port string, onuID int) (model.BoundOnu, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := model.BoundOnu{Port: port, OnuID: onuID}.Key()
	b, ok := c.boundByKey[key]
	if !ok {
		return model.BoundOnu{}, false
	}
	delete(c.boundByKey, key)
	delete(c.boundBySerial, strings.ToUpper(b.SerialNumber))
	return b, true
}
