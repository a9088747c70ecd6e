package inventory

import (
	"testing"

	"github.com/nanoncore/ma5801-olt-manager/internal/model"
)

func TestNextFreeOnuIdEmptyPort(t *testing.T) {
	c := New()
	id, err := c.NextFreeOnuId("0/1/0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 0 {
		t.Errorf("id = %d, want 0", id)
	}
}

func TestNextFreeOnuIdSkipsGap(t *testing.T) {
	c := New()
	c.Publish(Snapshot{Bound: []model.BoundOnu{
		{Port: "0/1/0", OnuID: 0},
		{Port: "0/1/0", OnuID: 1},
		{Port: "0/1/0", OnuID: 3},
	}})
	id, err := c.NextFreeOnuId("0/1/0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 2 {
		t.Errorf("id = %d, want 2", id)
	}
}

func TestNextFreeOnuIdExhausted(t *testing.T) {
	c := New()
	bound := make([]model.BoundOnu, 0, maxOnuID+1)
	for i := 0; i <= maxOnuID; i++ {
		bound = append(bound, model.BoundOnu{Port: "0/1/0", OnuID: i})
	}
	c.Publish(Snapshot{Bound: bound})
	if _, err := c.NextFreeOnuId("0/1/0"); !IsNoIdAvailableError(err) {
		t.Fatalf("expected NoIdAvailableError, got %v", err)
	}
}

func TestApplyBindMovesRecordAndMarksVlanInUse(t *testing.T) {
	c := New()
	c.Publish(Snapshot{
		Unbound: []model.UnboundOnu{{SerialNumber: "485754430A1B2C3D", Port: "0/1/0"}},
		Vlans:   []model.Vlan{{ID: 200, Type: model.VlanTypeSmart}},
	})
	vlanID := 200
	c.ApplyBind(model.BoundOnu{
		SerialNumber: "485754430A1B2C3D",
		Port:         "0/1/0",
		OnuID:        0,
		VlanID:       &vlanID,
	})

	if _, ok := c.UnboundBySerial("485754430A1B2C3D"); ok {
		t.Error("expected serial removed from unboundBySerial after bind")
	}
	if _, ok := c.BoundBySerial("485754430A1B2C3D"); !ok {
		t.Error("expected serial present in boundBySerial after bind")
	}
	vlan, ok := c.VlanByID(200)
	if !ok || !vlan.InUse {
		t.Errorf("expected VLAN 200 inUse=true, got %+v ok=%v", vlan, ok)
	}
}

func TestApplyUnbindRemovesFromBothBoundMaps(t *testing.T) {
	c := New()
	c.ApplyBind(model.BoundOnu{SerialNumber: "AABBCCDD11223344", Port: "0/1/0", OnuID: 0})
	removed, ok := c.ApplyUnbind("0/1/0", 0)
	if !ok {
		t.Fatal("expected ApplyUnbind to find the record")
	}
	if removed.SerialNumber != "AABBCCDD11223344" {
		t.Errorf("unexpected removed record: %+v", removed)
	}
	if _, ok := c.BoundByKey("0/1/0", 0); ok {
		t.Error("expected record gone from boundByKey")
	}
	if _, ok := c.BoundBySerial("AABBCCDD11223344"); ok {
		t.Error("expected record gone from boundBySerial")
	}
}

func TestPublishPreservesVlanInUseAcrossRefresh(t *testing.T) {
	c := New()
	c.Publish(Snapshot{Vlans: []model.Vlan{{ID: 200}}})
	vlanID := 200
	c.ApplyBind(model.BoundOnu{SerialNumber: "AA", Port: "0/1/0", OnuID: 0, VlanID: &vlanID})

	c.Publish(Snapshot{Vlans: []model.Vlan{{ID: 200}}})
	vlan, ok := c.VlanByID(200)
	if !ok || !vlan.InUse {
		t.Errorf("expected inUse to survive a refresh publish, got %+v", vlan)
	}
}

func TestGponPortsDeduped(t *testing.T) {
	c := New()
	c.Publish(Snapshot{
		Unbound: []model.UnboundOnu{{SerialNumber: "AA", Port: "0/2/0"}},
		Bound:   []model.BoundOnu{{Port: "0/1/1", OnuID: 0}, {Port: "0/1/0", OnuID: 1}, {Port: "0/1/0", OnuID: 2}},
	})
	ports := c.GponPorts()
	if len(ports) != 3 {
		t.Fatalf("got %d ports, want 3: %v", len(ports), ports)
	}
	if ports[0] != "0/1/0" || ports[1] != "0/1/1" || ports[2] != "0/2/0" {
		t.Errorf("unexpected ports: %v", ports)
	}
}
