package cliparse

import "testing"

func TestParseOntDetail(t *testing.T) {
	output := `
F/S/P : 0/1/0
ONT-ID : 0
Description : Customer-A
Run state : online

F/S/P : 0/1/1
ONT-ID : 1
Description : Customer-B
`
	got := ParseOntDetail(output)
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Port != "0/1/0" || got[0].OnuID != 0 || got[0].Description != "Customer-A" {
		t.Errorf("unexpected first record: %+v", got[0])
	}
	if got[1].Port != "0/1/1" || got[1].OnuID != 1 || got[1].Description != "Customer-B" {
		t.Errorf("unexpected second record: %+v", got[1])
	}
}

func TestParseOntDetailNoDescription(t *testing.T) {
	output := `
F/S/P : 0/1/0
ONT-ID : 0
Run state : online
`
	got := ParseOntDetail(output)
	if len(got) != 0 {
		t.Fatalf("got %d records, want 0", len(got))
	}
}
