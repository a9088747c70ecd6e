// Package provision implements the Bind/Unbind Controller (spec §4.G):
// precondition checks, identifier allocation, and CLI command composition
// for the add-ONT and delete-ONT flows, grounded in the teacher's
// vendors/huawei/cli.go AddONU/DeleteONU command building.
package provision

import (
	"strings"

	"github.com/nanoncore/ma5801-olt-manager/internal/inventory"
	"github.com/nanoncore/ma5801-olt-manager/internal/model"
)

// Validate checks whether sn is eligible to be bound: already bound is
// rejected, not-yet-discovered is rejected, otherwise Ok (nil).
func Validate(cache *inventory.Cache, sn string) error {
	sn = strings.ToUpper(sn)
	if _, ok := cache.BoundBySerial(sn); ok {
		return NewPreconditionError("ONU is already bound")
	}
	if _, ok := cache.UnboundBySerial(sn); !ok {
		return NewPreconditionError("ONU has not been discovered by autofind")
	}
	return nil
}

// Verify is the non-mutating diagnostic companion to Validate: it reports
// whether sn is bound, unbound, or unknown, with enough detail for an
// operator to decide what to do next.
func Verify(cache *inventory.Cache, sn string) model.VerifyResult {
	sn = strings.ToUpper(sn)
	if b, ok := cache.BoundBySerial(sn); ok {
		result := model.VerifyResult{
			SerialNumber: sn,
			State:        "bound",
			Port:         b.Port,
			OnuID:        &b.OnuID,
			RxPower:      b.RxPower,
		}
		if b.VlanID != nil {
			if v, ok := cache.VlanByID(*b.VlanID); ok {
				result.VlanAttached = v.InUse
			}
		}
		return result
	}
	if _, ok := cache.UnboundBySerial(sn); ok {
		return model.VerifyResult{SerialNumber: sn, State: "unbound"}
	}
	return model.VerifyResult{SerialNumber: sn, State: "unknown"}
}
