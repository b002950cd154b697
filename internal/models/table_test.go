package models

import "testing"

func TestRowKeepsInsertionOrder(t *testing.T) {
	r := NewRow()
	r.Set("b", String("1"))
	r.Set("a", String("2"))
	r.Set("b", String("3"))

	cols := r.Columns()
	if len(cols) != 2 || cols[0] != "b" || cols[1] != "a" {
		t.Errorf("Columns() = %v, want [b a]", cols)
	}
	if v, _ := r.Get("b"); v.String() != "3" {
		t.Errorf("Get(b) = %q, want replaced value 3", v.String())
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get(missing) should report false")
	}
}

func TestZeroRowIsUsable(t *testing.T) {
	var r Row
	r.Set("x", Bool(true))
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestTableColumnsUnion(t *testing.T) {
	r1 := NewRow()
	r1.Set("Name", String("PATH"))
	r1.Set("Value", String("C:\\"))
	r2 := NewRow()
	r2.Set("UserName", String("SYSTEM"))
	r2.Set("Name", String("TEMP"))

	tbl := NewTable("Environment Variables", r1, r2)
	cols := tbl.Columns()
	want := []string{"Name", "Value", "UserName"}
	if len(cols) != len(want) {
		t.Fatalf("Columns() = %v, want %v", cols, want)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Errorf("Columns()[%d] = %q, want %q", i, cols[i], want[i])
		}
	}
}

func TestResultEnvelope(t *testing.T) {
	single := Single(NewTable("Antivirus"))
	if single.IsGroup() {
		t.Error("Single envelope reports IsGroup")
	}
	if tbl, ok := single.Table(); !ok || tbl.Source != "Antivirus" {
		t.Errorf("Table() = %+v, %v", tbl, ok)
	}
	if len(single.Tables()) != 1 {
		t.Errorf("Tables() len = %d, want 1", len(single.Tables()))
	}

	group := Group(NewTable("a"), NewTable("b"))
	if !group.IsGroup() {
		t.Error("Group envelope should report IsGroup")
	}
	if _, ok := group.Table(); ok {
		t.Error("Table() on a group should report false")
	}
	tables := group.Tables()
	if len(tables) != 2 || tables[0].Source != "a" || tables[1].Source != "b" {
		t.Errorf("Tables() = %+v", tables)
	}

	empty := Group()
	if !empty.IsGroup() || len(empty.Tables()) != 0 {
		t.Error("empty group should be a group with no tables")
	}
}

func TestNewTableNeverNilRows(t *testing.T) {
	if NewTable("x").Rows == nil {
		t.Error("NewTable should initialise Rows")
	}
}
