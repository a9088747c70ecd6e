package provision

import (
	"fmt"
	"strings"
	"time"

	"github.com/nanoncore/ma5801-olt-manager/internal/inventory"
	"github.com/nanoncore/ma5801-olt-manager/internal/model"
)

// Session is the subset of *cliengine.Session the controller drives.
type Session interface {
	Execute(command string) (string, error)
	EnterInterface(fs string) error
	LeaveInterface() error
}

// Controller is the Bind/Unbind Controller component.
type Controller struct {
	cache *inventory.Cache
}

func New(cache *inventory.Cache) *Controller { return &Controller{cache: cache} }

// Bind re-validates req.SerialNumber, allocates an ONU id, composes and
// sends the add-ONT command sequence, and on success moves the record
// into the bound collections. On any command error it attempts a
// best-effort rollback of what it already issued and returns *BindError.
func (c *Controller) Bind(sess Session, req model.BindRequest) (model.BoundOnu, error) {
	sn := strings.ToUpper(req.SerialNumber)

	if err := Validate(c.cache, sn); err != nil {
		return model.BoundOnu{}, err
	}
	if _, ok := findLineProfile(c.cache, req.LineProfileID); !ok {
		return model.BoundOnu{}, NewPreconditionError("line profile does not exist")
	}
	if _, ok := findServiceProfile(c.cache, req.ServiceProfileID); !ok {
		return model.BoundOnu{}, NewPreconditionError("service profile does not exist")
	}
	if req.VlanID != nil {
		if _, ok := c.cache.VlanByID(*req.VlanID); !ok {
			return model.BoundOnu{}, NewPreconditionError("VLAN does not exist")
		}
	}

	onuID, err := c.cache.NextFreeOnuId(req.GponPort)
	if err != nil {
		return model.BoundOnu{}, err
	}

	fs, err := fsOf(req.GponPort)
	if err != nil {
		return model.BoundOnu{}, NewBindError("interface", err.Error(), err)
	}
	if err := sess.EnterInterface(fs); err != nil {
		return model.BoundOnu{}, NewBindError("interface gpon "+fs, "", err)
	}
	defer sess.LeaveInterface()

	issued, err := c.issueAddSequence(sess, req, sn, onuID)
	if err != nil {
		rollback(sess, issued, onuID)
		return model.BoundOnu{}, err
	}

	bound := model.BoundOnu{
		ID:               fmt.Sprintf("%s-%d", req.GponPort, onuID),
		SerialNumber:     sn,
		Port:             req.GponPort,
		OnuID:            onuID,
		Description:      req.Description,
		LineProfileID:    req.LineProfileID,
		ServiceProfileID: req.ServiceProfileID,
		RunStatus:        model.RunStatusOffline,
		ConfigState:      model.ConfigStateInitial,
		VlanID:           req.VlanID,
		ManagementVlanID: req.ManagementVlanID,
		BoundAt:          time.Now(),
		PPPoEUsername:    req.PPPoEUsername,
		PPPoEPassword:    req.PPPoEPassword,
		Tr069ProfileName: req.Tr069ProfileName,
		OnuType:          req.OnuType,
	}
	c.cache.ApplyBind(bound)
	return bound, nil
}

// issueAddSequence sends the add-ONT command and its VLAN/TR-069
// follow-ons, returning the list of commands actually issued (in order)
// so a failure can be rolled back.
func (c *Controller) issueAddSequence(sess Session, req model.BindRequest, sn string, onuID int) ([]string, error) {
	var issued []string

	addCmd := addOntCommand(req, sn, onuID)
	out, err := sess.Execute(addCmd)
	issued = append(issued, addCmd)
	if err != nil || looksLikeCliError(out) {
		return issued, NewBindError("ont add", out, err)
	}

	if req.VlanID != nil {
		cmd := servicePortCommand(onuID, *req.VlanID, 0)
		out, err := sess.Execute(cmd)
		issued = append(issued, cmd)
		if err != nil || looksLikeCliError(out) {
			return issued, NewBindError("data vlan service-port", out, err)
		}
	}

	if req.ManagementVlanID != nil {
		cmd := servicePortCommand(onuID, *req.ManagementVlanID, 1)
		out, err := sess.Execute(cmd)
		issued = append(issued, cmd)
		if err != nil || looksLikeCliError(out) {
			return issued, NewBindError("management vlan service-port", out, err)
		}
	}

	if req.Tr069ProfileName != "" {
		cmd := fmt.Sprintf("ont tr069-profile-name %d profile-name %s", onuID, req.Tr069ProfileName)
		out, err := sess.Execute(cmd)
		issued = append(issued, cmd)
		if err != nil || looksLikeCliError(out) {
			return issued, NewBindError("tr069 profile association", out, err)
		}
	}

	return issued, nil
}

// addOntCommand composes the add-ONT command, branching on OMCI (huawei)
// vs password/MAC authentication (general) per spec §4.G step 4.
func addOntCommand(req model.BindRequest, sn string, onuID int) string {
	var parts []string
	if req.OnuType == model.OnuTypeGeneral {
		parts = append(parts, fmt.Sprintf("ont add %d sn-auth %s no-omci", onuID, sn))
		if req.OnuPassword != "" {
			parts = append(parts, fmt.Sprintf("password %s", req.OnuPassword))
		}
	} else {
		parts = append(parts, fmt.Sprintf("ont add %d sn-auth %s omci", onuID, sn))
	}
	parts = append(parts, fmt.Sprintf("ont-lineprofile-id %d", req.LineProfileID))
	parts = append(parts, fmt.Sprintf("ont-srvprofile-id %d", req.ServiceProfileID))
	if req.Description != "" {
		parts = append(parts, fmt.Sprintf("desc %q", req.Description))
	}
	return strings.Join(parts, " ")
}

// servicePortCommand composes a VLAN service-port command. ipIndex 0
// is the data VLAN, 1 is the management VLAN (spec §4.G step 4).
func servicePortCommand(onuID, vlanID, ipIndex int) string {
	return fmt.Sprintf("ont port native-vlan %d eth 1 vlan %d ip-index %d", onuID, vlanID, ipIndex)
}

// rollback issues the inverse of whatever was already sent, newest first,
// best effort: each service-port command is withdrawn with its "undo"
// form, then the ONT is deleted. The TR-069 profile association is not
// withdrawn separately. Failures during rollback are not surfaced,
// matching spec §4.G step 5 ("attempt a best-effort rollback").
func rollback(sess Session, issued []string, onuID int) {
	if len(issued) == 0 {
		return
	}
	for i := len(issued) - 1; i >= 0; i-- {
		if strings.HasPrefix(issued[i], "ont port native-vlan ") {
			_, _ = sess.Execute("undo " + issued[i])
		}
	}
	_, _ = sess.Execute(fmt.Sprintf("ont delete %d", onuID))
}

func looksLikeCliError(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "error") || strings.Contains(lower, "failure") || strings.Contains(lower, "unknown command")
}

func findLineProfile(cache *inventory.Cache, id int) (model.LineProfile, bool) {
	for _, p := range cache.LineProfiles() {
		if p.ID == id {
			return p, true
		}
	}
	return model.LineProfile{}, false
}

func findServiceProfile(cache *inventory.Cache, id int) (model.ServiceProfile, bool) {
	for _, p := range cache.ServiceProfiles() {
		if p.ID == id {
			return p, true
		}
	}
	return model.ServiceProfile{}, false
}

// fsOf strips the trailing "/port" segment off a full F/S/P string to
// recover the F/S the "interface gpon" command takes.
func fsOf(port string) (string, error) {
	idx := strings.LastIndex(port, "/")
	if idx < 0 {
		return "", fmt.Errorf("malformed port %q", port)
	}
	return port[:idx], nil
}
