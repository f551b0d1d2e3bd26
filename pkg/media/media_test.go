package media

import "testing"

func TestResolved(t *testing.T) {
	d := RequestDetail{Title: "Monitor", Options: []DropdownOption{
		{Title: "All"}, {Title: "None"},
	}}
	if d.Resolved() {
		t.Error("two options is not resolved")
	}
	d.Options = d.Options[:1]
	if !d.Resolved() {
		t.Error("one option is resolved")
	}
}

// Sessions reduce option slices in place; the template handed out by a
// backend must be isolated from that.
func TestCloneDetailsIsolation(t *testing.T) {
	template := []RequestDetail{
		{Title: "Quality Profile", Key: "t:qp", Options: []DropdownOption{
			{Title: "SD", ID: IntID(1)},
			{Title: "HD", ID: IntID(2)},
		}},
	}

	clone := CloneDetails(template)
	clone[0].Options[0] = DropdownOption{Title: "mutated"}
	clone[0].Options = clone[0].Options[:1]

	if template[0].Options[0].Title != "SD" || len(template[0].Options) != 2 {
		t.Errorf("template mutated through clone: %+v", template[0].Options)
	}
}

func TestSelectableIDConstructors(t *testing.T) {
	if id := IntID(7); id.Kind != IDInt || id.Int != 7 {
		t.Errorf("IntID: %+v", id)
	}
	if id := StringID("all"); id.Kind != IDString || id.Str != "all" {
		t.Errorf("StringID: %+v", id)
	}
	if id := BoolID(true); id.Kind != IDBool || !id.Bool {
		t.Errorf("BoolID: %+v", id)
	}
	var zero SelectableID
	if zero.Kind != IDNone {
		t.Error("zero value must be IDNone")
	}
}
