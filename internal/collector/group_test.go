package collector

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/vitalis-app/hostenum/internal/errs"
	"github.com/vitalis-app/hostenum/internal/models"
	"github.com/vitalis-app/hostenum/internal/platform"
	"github.com/vitalis-app/hostenum/internal/session"
	"github.com/vitalis-app/hostenum/internal/session/sessiontest"
)

func sources(res models.Result) []string {
	var out []string
	for _, t := range res.Tables() {
		out = append(out, t.Source)
	}
	return out
}

func registerGroup(reg *Registry, name string, members ...string) {
	reg.Register(Registration{Name: name, Factory: func() Collector { return NewGroup(reg, members...) }})
}

func TestGroupFlattensNestedGroups(t *testing.T) {
	reg := NewRegistry(nil)
	register(reg, "a", &staticCollector{source: "A", rows: 1})
	register(reg, "b", &staticCollector{source: "B", rows: 2})
	register(reg, "c", &staticCollector{source: "C", rows: 3})
	register(reg, "d", &staticCollector{source: "D"})
	registerGroup(reg, "g1", "a", "b")
	registerGroup(reg, "g2", "g1", "c")
	registerGroup(reg, "g3", "d", "g2", "a")

	sess := sessiontest.New().Session(session.Options{})
	g, _ := reg.Find("g3")

	res, err := Run(context.Background(), sess, g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsGroup() {
		t.Error("group should return a group envelope")
	}

	want := []string{"D", "A", "B", "C", "A"}
	if got := sources(res); !slices.Equal(got, want) {
		t.Errorf("sources = %v, want %v", got, want)
	}

	wantRows := []int{0, 1, 2, 3, 1}
	for i, table := range res.Tables() {
		if len(table.Rows) != wantRows[i] {
			t.Errorf("table %d (%s): %d rows, want %d", i, table.Source, len(table.Rows), wantRows[i])
		}
	}
}

func TestGroupMissingMemberIsFatal(t *testing.T) {
	reg := NewRegistry(nil)
	calls := 0
	register(reg, "a", &staticCollector{source: "A", rows: 1, calls: &calls})
	registerGroup(reg, "g", "a", "ghost", "a")

	sess := sessiontest.New().Session(session.Options{})
	g, _ := reg.Find("g")

	res, err := g.Execute(context.Background(), sess, nil)
	if !errors.Is(err, errs.ErrMisconfigured) {
		t.Fatalf("error = %v, want ErrMisconfigured", err)
	}
	if n := len(res.Tables()); n != 0 {
		t.Errorf("%d tables leaked from a failed group", n)
	}
	if calls != 1 {
		t.Errorf("members after the missing one ran: calls = %d", calls)
	}
}

func TestGroupReturnsFirstMemberError(t *testing.T) {
	boom := errors.New("access denied")
	other := errors.New("never reached")

	reg := NewRegistry(nil)
	register(reg, "ok", &staticCollector{source: "OK", rows: 1})
	register(reg, "boom", &staticCollector{err: boom})
	register(reg, "other", &staticCollector{err: other})
	registerGroup(reg, "inner", "ok", "boom")
	registerGroup(reg, "outer", "ok", "inner", "other")

	sess := sessiontest.New().Session(session.Options{})
	g, _ := reg.Find("outer")

	res, err := g.Execute(context.Background(), sess, nil)
	if err != boom {
		t.Fatalf("error = %v, want the member error unchanged", err)
	}
	if n := len(res.Tables()); n != 0 {
		t.Errorf("%d tables leaked from a failed group", n)
	}
}

func TestGroupGatesMembersOnRemote(t *testing.T) {
	reg := NewRegistry(nil)
	register(reg, "remote", &staticCollector{source: "R", remote: true})
	register(reg, "local", &staticCollector{source: "L"})
	registerGroup(reg, "g", "remote", "local")

	sess := sessiontest.New().Session(session.Options{ComputerName: "srv02"})
	g, _ := reg.Find("g")

	if !g.SupportsRemote() {
		t.Error("groups support remote targets")
	}
	if _, err := Run(context.Background(), sess, g, nil); !errors.Is(err, errs.ErrUnsupported) {
		t.Errorf("error = %v, want ErrUnsupported", err)
	}
}

func TestGroupMembersAreCopied(t *testing.T) {
	members := []string{"a", "b"}
	g := NewGroup(NewRegistry(nil), members...)
	members[0] = "z"

	got := g.Members()
	got[1] = "y"
	if !slices.Equal(g.Members(), []string{"a", "b"}) {
		t.Errorf("Members() = %v", g.Members())
	}
}

func TestMiscGroupEndToEnd(t *testing.T) {
	b := sessiontest.New()
	b.Records[sessiontest.QueryKey(securityCenterNamespace, antivirusQuery)] = []map[string]models.Value{{
		"displayName":              models.String("Windows Defender"),
		"pathToSignedProductExe":   models.String(`windowsdefender://`),
		"pathToSignedReportingExe": models.String(`%ProgramFiles%\Windows Defender\MsMpeng.exe`),
	}}
	b.SubKeys[sessiontest.KeyPath(platform.LocalMachine, amsiProvidersKey)] = []string{
		"{2781761E-28E0-4109-99FE-B9D127C57AFE}",
		"{A7C452EF-8E9F-42EB-9F2B-245613CA0DC9}",
	}
	b.Strings[sessiontest.ValueKey(platform.LocalMachine,
		`SOFTWARE\Classes\CLSID\{2781761E-28E0-4109-99FE-B9D127C57AFE}\InprocServer32`, "")] = `C:\ProgramData\Microsoft\Windows Defender\Platform\MpOav.dll`
	b.Strings[sessiontest.ValueKey(platform.LocalMachine,
		`SOFTWARE\Classes\CLSID\{A7C452EF-8E9F-42EB-9F2B-245613CA0DC9}\InprocServer32`, "")] = `C:\Program Files\Vendor\amsi.dll`

	sess := b.Session(session.Options{})
	g, ok := Find("group:misc")
	if !ok {
		t.Fatal("group:misc not registered")
	}

	res, err := Run(context.Background(), sess, g, nil)
	if err != nil {
		t.Fatal(err)
	}

	tables := res.Tables()
	if len(tables) != 2 {
		t.Fatalf("%d tables, want 2", len(tables))
	}
	if tables[0].Source != "Antivirus" || len(tables[0].Rows) != 1 {
		t.Errorf("table 0 = %s with %d rows", tables[0].Source, len(tables[0].Rows))
	}
	if tables[1].Source != "Amsi Providers" || len(tables[1].Rows) != 2 {
		t.Errorf("table 1 = %s with %d rows", tables[1].Source, len(tables[1].Rows))
	}
	if b.OpenCursors != 0 {
		t.Errorf("%d cursors left open", b.OpenCursors)
	}
}

func TestGroupCycleIsMisconfigured(t *testing.T) {
	reg := NewRegistry(nil)
	calls := 0
	register(reg, "a", &staticCollector{source: "A", rows: 1, remote: true, calls: &calls})
	registerGroup(reg, "group:outer", "a", "group:inner")
	registerGroup(reg, "group:inner", "group:outer")

	g, _ := reg.Find("group:outer")
	sess := sessiontest.New().Session(session.Options{})
	res, err := Run(context.Background(), sess, g, nil)
	if !errors.Is(err, errs.ErrMisconfigured) {
		t.Fatalf("error = %v, want ErrMisconfigured", err)
	}
	if len(res.Tables()) != 0 {
		t.Errorf("%d tables leaked from a failed group", len(res.Tables()))
	}
}

func TestGroupRepeatedMemberIsNotACycle(t *testing.T) {
	reg := NewRegistry(nil)
	register(reg, "a", &staticCollector{source: "A", remote: true})
	registerGroup(reg, "group:twice", "a", "a")
	registerGroup(reg, "group:both", "group:twice", "group:twice")

	g, _ := reg.Find("group:both")
	sess := sessiontest.New().Session(session.Options{})
	res, err := Run(context.Background(), sess, g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := sources(res); !slices.Equal(got, []string{"A", "A", "A", "A"}) {
		t.Errorf("sources = %v", got)
	}
}
