package provision

import (
	"fmt"

	"github.com/nanoncore/ma5801-olt-manager/internal/model"
)

// Unbind locates the BoundOnu at (req.Port, req.OnuID), issues delete
// commands in the reverse order of Bind, and on success removes it from
// the cache. Without CleanConfig only "ont delete" is issued; with it the
// management and then the data service-port are withdrawn first. The
// TR-069 profile association is not withdrawn separately (spec §4.G).
func (c *Controller) Unbind(sess Session, req model.UnbindRequest) error {
	bound, ok := c.cache.BoundByKey(req.Port, req.OnuID)
	if !ok {
		return NewNotFoundError(req.Port, req.OnuID)
	}

	fs, err := fsOf(req.Port)
	if err != nil {
		return NewBindError("interface", "", err)
	}
	if err := sess.EnterInterface(fs); err != nil {
		return NewBindError("interface gpon "+fs, "", err)
	}
	defer sess.LeaveInterface()

	if req.CleanConfig {
		if bound.ManagementVlanID != nil {
			cmd := fmt.Sprintf("undo ont port native-vlan %d eth 1 vlan %d ip-index 1", req.OnuID, *bound.ManagementVlanID)
			if _, err := sess.Execute(cmd); err != nil && !req.Force {
				return NewBindError("undo management vlan service-port", "", err)
			}
		}
		if bound.VlanID != nil {
			cmd := fmt.Sprintf("undo ont port native-vlan %d eth 1 vlan %d ip-index 0", req.OnuID, *bound.VlanID)
			if _, err := sess.Execute(cmd); err != nil && !req.Force {
				return NewBindError("undo data vlan service-port", "", err)
			}
		}
	}

	cmd := fmt.Sprintf("ont delete %d", req.OnuID)
	out, err := sess.Execute(cmd)
	if err != nil && !req.Force {
		return NewBindError("ont delete", out, err)
	}

	c.cache.ApplyUnbind(req.Port, req.OnuID)
	return nil
}
