package provision

import (
	"errors"
	"strings"
	"testing"

	"github.com/nanoncore/ma5801-olt-manager/internal/inventory"
	"github.com/nanoncore/ma5801-olt-manager/internal/model"
)

type fakeSession struct {
	executed []string
	failOn   string
}

func (f *fakeSession) Execute(command string) (string, error) {
	f.executed = append(f.executed, command)
	if f.failOn != "" && command == f.failOn {
		return "Error: command rejected", errors.New("simulated rejection")
	}
	return "OK", nil
}

func (f *fakeSession) EnterInterface(fs string) error { return nil }
func (f *fakeSession) LeaveInterface() error          { return nil }

func seededCache() *inventory.Cache {
	c := inventory.New()
	c.Publish(inventory.Snapshot{
		Unbound:         []model.UnboundOnu{{SerialNumber: "485754430A1B2C3D", Port: "0/1/0"}},
		LineProfiles:    []model.LineProfile{{ID: 10, Name: "profile-10m"}},
		ServiceProfiles: []model.ServiceProfile{{ID: 20, Name: "internet-srv"}},
		Vlans:           []model.Vlan{{ID: 200, Type: model.VlanTypeSmart}},
	})
	return c
}

// TestBindSuccess reproduces the scenario-2 fixed acceptance case.
func TestBindSuccess(t *testing.T) {
	cache := seededCache()
	ctrl := New(cache)
	sess := &fakeSession{}

	req := model.BindRequest{
		SerialNumber:     "485754430A1B2C3D",
		GponPort:         "0/1/0",
		LineProfileID:    10,
		ServiceProfileID: 20,
		Description:      "Cust A",
		VlanID:           intPtr(200),
		OnuType:          model.OnuTypeHuawei,
	}
	bound, err := ctrl.Bind(sess, req)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if bound.OnuID != 0 {
		t.Errorf("OnuID = %d, want 0", bound.OnuID)
	}
	if _, ok := cache.UnboundBySerial("485754430A1B2C3D"); ok {
		t.Error("expected serial removed from unboundBySerial")
	}
	if _, ok := cache.BoundBySerial("485754430A1B2C3D"); !ok {
		t.Error("expected serial present in boundBySerial")
	}
	vlan, _ := cache.VlanByID(200)
	if !vlan.InUse {
		t.Error("expected VLAN 200.inUse=true after bind")
	}
}

// TestDoubleBindRejected reproduces scenario 3.
func TestDoubleBindRejected(t *testing.T) {
	cache := seededCache()
	ctrl := New(cache)
	sess := &fakeSession{}
	req := model.BindRequest{
		SerialNumber: "485754430A1B2C3D", GponPort: "0/1/0",
		LineProfileID: 10, ServiceProfileID: 20, VlanID: intPtr(200), OnuType: model.OnuTypeHuawei,
	}
	if _, err := ctrl.Bind(sess, req); err != nil {
		t.Fatalf("first Bind() error = %v", err)
	}
	_, err := ctrl.Bind(sess, req)
	if !IsPreconditionError(err) {
		t.Fatalf("expected PreconditionError on double bind, got %v", err)
	}
}

func TestBindUnknownLineProfileRejected(t *testing.T) {
	cache := seededCache()
	ctrl := New(cache)
	req := model.BindRequest{
		SerialNumber: "485754430A1B2C3D", GponPort: "0/1/0",
		LineProfileID: 999, ServiceProfileID: 20, OnuType: model.OnuTypeHuawei,
	}
	_, err := ctrl.Bind(&fakeSession{}, req)
	if !IsPreconditionError(err) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
}

func TestBindRollsBackOnCommandFailure(t *testing.T) {
	cache := seededCache()
	ctrl := New(cache)
	sess := &fakeSession{failOn: "ont port native-vlan 0 eth 1 vlan 200 ip-index 0"}
	req := model.BindRequest{
		SerialNumber: "485754430A1B2C3D", GponPort: "0/1/0",
		LineProfileID: 10, ServiceProfileID: 20, VlanID: intPtr(200), OnuType: model.OnuTypeHuawei,
	}
	_, err := ctrl.Bind(sess, req)
	if !IsBindError(err) {
		t.Fatalf("expected BindError, got %v", err)
	}
	if _, ok := cache.BoundBySerial("485754430A1B2C3D"); ok {
		t.Error("expected no bound record after a rolled-back bind")
	}
	found := false
	for _, cmd := range sess.executed {
		if cmd == "ont delete 0" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected rollback to issue 'ont delete 0', got %v", sess.executed)
	}
}

func TestBindWithoutVlanEmitsNoVlanCommand(t *testing.T) {
	cache := seededCache()
	ctrl := New(cache)
	sess := &fakeSession{}
	req := model.BindRequest{
		SerialNumber: "485754430A1B2C3D", GponPort: "0/1/0",
		LineProfileID: 10, ServiceProfileID: 20, OnuType: model.OnuTypeHuawei,
	}
	if _, err := ctrl.Bind(sess, req); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	for _, cmd := range sess.executed {
		if strings.Contains(cmd, "native-vlan") {
			t.Errorf("expected no VLAN command when vlanId is absent, got %q", cmd)
		}
	}
}

// TestUnbindWithCleanConfig reproduces scenario 4.
func TestUnbindWithCleanConfig(t *testing.T) {
	cache := seededCache()
	ctrl := New(cache)
	sess := &fakeSession{}
	req := model.BindRequest{
		SerialNumber: "485754430A1B2C3D", GponPort: "0/1/0",
		LineProfileID: 10, ServiceProfileID: 20, VlanID: intPtr(200), OnuType: model.OnuTypeHuawei,
	}
	if _, err := ctrl.Bind(sess, req); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	if err := ctrl.Unbind(sess, model.UnbindRequest{OnuID: 0, Port: "0/1/0", CleanConfig: true}); err != nil {
		t.Fatalf("Unbind() error = %v", err)
	}
	if _, ok := cache.BoundByKey("0/1/0", 0); ok {
		t.Error("expected BoundOnu removed after unbind")
	}

	// A following autofind sync that includes the serial repopulates
	// unboundBySerial.
	cache.Publish(inventory.Snapshot{Unbound: []model.UnboundOnu{{SerialNumber: "485754430A1B2C3D", Port: "0/1/0"}}})
	if _, ok := cache.UnboundBySerial("485754430A1B2C3D"); !ok {
		t.Error("expected serial to reappear in unboundBySerial after the next autofind sync")
	}
}

func TestUnbindNotFound(t *testing.T) {
	cache := seededCache()
	ctrl := New(cache)
	err := ctrl.Unbind(&fakeSession{}, model.UnbindRequest{OnuID: 5, Port: "0/1/0"})
	if !IsNotFoundError(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func intPtr(v int) *int { return &v }
