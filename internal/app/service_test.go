package service_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/tlibouban/deploycheck/internal/app"
	"github.com/tlibouban/deploycheck/internal/domain/clientindex"
	"github.com/tlibouban/deploycheck/internal/domain/toggle"
	"github.com/tlibouban/deploycheck/internal/domain/trainerdir"
	"github.com/tlibouban/deploycheck/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const clientDataset = "numero\tnom\ttype\terp\teffectif\tassocie\tcollab\tsecr\tassist\tjuriste\tinfo\trh\tcom\tdoc\tcompta\tdepartement\n" +
	"0262\tCabinet Martin\tClient\tNEO\t6\t2\t2\t1\t1\t0\t0\t0\t0\t0\t0\tBas-Rhin\n" +
	"1043\tSCP Dubois & Associés\tProspect\tAIR\t5\t1\t2\t1\t1\t0\t0\t0\t0\t0\t0\tMorbihan\n"

const trainerRoster = `[
  {"zone": "Est", "department": "Bas-Rhin", "trainers": [
    {"first_name": "Claire", "last_name": "Weber", "specialty": "NEO", "email": "claire.weber@example.fr"}
  ]},
  {"zone": "Ouest", "department": "Morbihan", "trainers": [
    {"first_name": "Gwenn", "last_name": "Berger", "specialty": "AIR", "email": "gwenn.berger@example.fr"}
  ]}
]`

func startedService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()

	dir := t.TempDir()
	clientsPath := filepath.Join(dir, "clients.tsv")
	rosterPath := filepath.Join(dir, "roster.json")
	if err := os.WriteFile(clientsPath, []byte(clientDataset), 0o600); err != nil {
		t.Fatalf("write clients: %v", err)
	}
	if err := os.WriteFile(rosterPath, []byte(trainerRoster), 0o600); err != nil {
		t.Fatalf("write roster: %v", err)
	}

	opts = append([]service.Option{
		service.WithClientDataset(clientsPath),
		service.WithTrainerRoster(rosterPath),
		service.WithDebounceWindows(0, 0),
	}, opts...)

	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestServiceStart(t *testing.T) {
	Convey("Given a service with datasets on disk", t, func() {
		svc := startedService(t)

		Convey("Then both datasets are loaded", func() {
			stats := svc.GetStats()
			So(stats.Started, ShouldBeTrue)
			So(stats.ClientsLoaded, ShouldBeTrue)
			So(stats.Clients, ShouldEqual, 2)
			So(stats.RosterLoaded, ShouldBeTrue)
			So(stats.RosterZones, ShouldEqual, 2)
		})

		Convey("And starting twice is a no-op", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
		})
	})

	Convey("Given a service with a missing client dataset", t, func() {
		svc := service.New(
			service.WithClientDataset("/nonexistent/clients.tsv"),
		)
		defer svc.Stop()

		Convey("Then Start degrades instead of failing", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.GetStats().ClientsLoaded, ShouldBeFalse)
		})
	})
}

func TestServiceLookup(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService(t)
		ctx := context.Background()

		Convey("Lookup resolves exact numbers and aliases", func() {
			m, ok := svc.Lookup(ctx, "0262")
			So(ok, ShouldBeTrue)
			So(m.Record.Name, ShouldEqual, "Cabinet Martin")

			m, ok = svc.Lookup(ctx, "262")
			So(ok, ShouldBeTrue)
			So(m.Record.Numero, ShouldEqual, "0262")
		})

		Convey("CommitLookup bypasses the window and resolves", func() {
			m, ok := svc.CommitLookup(ctx, "1043")
			So(ok, ShouldBeTrue)
			So(m.Record.Name, ShouldEqual, "SCP Dubois & Associés")
		})

		Convey("ScheduleLookup delivers the result to the callback", func() {
			done := make(chan bool, 1)
			svc.ScheduleLookup(ctx, "0262", func(_ clientindex.Match, ok bool) {
				done <- ok
			})
			So(<-done, ShouldBeTrue)
		})

		Convey("Suggest returns name completions", func() {
			sugg := svc.Suggest(ctx, "ca")
			So(sugg, ShouldHaveLength, 1)
			So(sugg[0].Name, ShouldEqual, "Cabinet Martin")
		})

		Convey("FindByName matches by containment", func() {
			rec := svc.FindByName(ctx, "dubois")
			So(rec, ShouldNotBeNil)
			So(rec.Numero, ShouldEqual, "1043")
		})
	})

	Convey("Given a started service with a long lookup window", t, func() {
		svc := startedService(t, service.WithDebounceWindows(time.Hour, time.Hour))
		ctx := context.Background()

		Convey("CommitLookup drops the superseded scheduled lookup", func() {
			var stale []string
			svc.ScheduleLookup(ctx, "0262", func(m clientindex.Match, ok bool) {
				if ok {
					stale = append(stale, m.Record.Numero)
				}
			})

			m, ok := svc.CommitLookup(ctx, "1043")
			So(ok, ShouldBeTrue)
			So(m.Record.Numero, ShouldEqual, "1043")
			So(stale, ShouldBeEmpty)
		})
	})
}

// blockingLoader parks inside LoadClientRows until released, so a test can
// hold one load in flight while issuing more.
type blockingLoader struct {
	calls   atomic.Int32
	began   chan struct{}
	release chan struct{}
}

func (l *blockingLoader) LoadClientRows(ctx context.Context, path string) ([][]string, error) {
	l.calls.Add(1)
	l.began <- struct{}{}
	<-l.release
	return nil, nil
}

func (l *blockingLoader) LoadRoster(ctx context.Context, path string) ([]trainerdir.ZoneEntry, error) {
	return nil, nil
}

func TestServiceLoadCoalescing(t *testing.T) {
	Convey("Given a service whose loader is still reading", t, func() {
		ld := &blockingLoader{began: make(chan struct{}), release: make(chan struct{})}
		svc := service.New(service.WithDatasetLoader(ld))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("Concurrent LoadClients calls coalesce into the one in flight", func() {
			errs := make(chan error, 1)
			go func() { errs <- svc.LoadClients(context.Background()) }()
			<-ld.began

			So(svc.LoadClients(context.Background()), ShouldBeNil)
			So(svc.LoadClients(context.Background()), ShouldBeNil)
			So(ld.calls.Load(), ShouldEqual, 1)

			close(ld.release)
			So(<-errs, ShouldBeNil)
		})
	})
}

func TestServiceNotStarted(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("Queries degrade to their zero outcome", func() {
			_, ok := svc.Lookup(ctx, "0262")
			So(ok, ShouldBeFalse)
			_, ok = svc.CommitLookup(ctx, "0262")
			So(ok, ShouldBeFalse)
			So(svc.Suggest(ctx, "ca"), ShouldBeEmpty)
			So(svc.FindByName(ctx, "martin"), ShouldBeNil)
			svc.ScheduleLookup(ctx, "0262", func(clientindex.Match, bool) {
				t.Error("scheduled lookup ran before Start")
			})

			So(svc.ResolveAssignment(ctx, "0262", "NEO", "on-site").Success, ShouldBeFalse)
			So(svc.ToggleCounters().Total(), ShouldEqual, 0)
			So(svc.ListProfiles(), ShouldBeEmpty)
			So(svc.GetStats().Started, ShouldBeFalse)
		})

		Convey("Mutations report the service is not started", func() {
			So(svc.RegisterToggle(""), ShouldBeEmpty)
			_, err := svc.CycleToggle(ctx, "x", "primary")
			So(err, ShouldWrap, service.ErrNotStarted)
			So(svc.SetToggleFilter("activated"), ShouldWrap, service.ErrNotStarted)
			So(svc.RemoveProfile(ctx, "x"), ShouldWrap, service.ErrNotStarted)
			So(svc.SetProfileCount(ctx, "x", 1), ShouldWrap, service.ErrNotStarted)
			So(svc.LoadClients(ctx), ShouldWrap, service.ErrNotStarted)
			So(svc.LoadRoster(ctx), ShouldWrap, service.ErrNotStarted)
		})
	})
}

func TestServiceAssignment(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService(t)
		ctx := context.Background()

		Convey("A known client in zone gets a ranked primary", func() {
			res := svc.ResolveAssignment(ctx, "0262", "NEO", "on-site")
			So(res.Success, ShouldBeTrue)
			So(res.ClientZone, ShouldEqual, "Est")
			So(res.Primary, ShouldNotBeNil)
			So(res.Primary.Trainer.LastName, ShouldEqual, "Weber")
			So(res.Primary.ProximityScore, ShouldEqual, 0)
		})

		Convey("An unknown client yields a structured failure", func() {
			res := svc.ResolveAssignment(ctx, "9999x", "NEO", "on-site")
			So(res.Success, ShouldBeFalse)
		})

		Convey("An empty product code yields no_specialty", func() {
			res := svc.ResolveAssignment(ctx, "0262", "", "on-site")
			So(res.Success, ShouldBeFalse)
			So(string(res.Reason), ShouldEqual, "no_specialty")
		})
	})
}

func TestServiceToggles(t *testing.T) {
	Convey("Given a started service with a totals notifier", t, func() {
		notifications := 0
		svc := startedService(t, service.WithTotalsNotifier(func() { notifications++ }))
		ctx := context.Background()

		Convey("Toggles register, cycle, and notify", func() {
			id := svc.RegisterToggle("")
			So(id, ShouldNotBeEmpty)

			st, err := svc.CycleToggle(ctx, id, "primary")
			So(err, ShouldBeNil)
			So(st, ShouldEqual, toggle.StateActivated)
			So(notifications, ShouldEqual, 1)

			c := svc.ToggleCounters()
			So(c.Activated, ShouldEqual, 1)
		})

		Convey("An invalid kind is rejected", func() {
			id := svc.RegisterToggle("")
			_, err := svc.CycleToggle(ctx, id, "tertiary")
			So(err, ShouldWrap, toggle.ErrUnknownKind)
		})

		Convey("The filter controls visibility only", func() {
			id := svc.RegisterToggle("")
			So(svc.SetToggleFilter("activated"), ShouldBeNil)
			So(svc.ToggleVisible(id), ShouldBeFalse)

			c := svc.ToggleCounters()
			So(c.NotExamined, ShouldEqual, 1)

			So(svc.SetToggleFilter(""), ShouldBeNil)
			So(svc.ToggleVisible(id), ShouldBeTrue)

			So(svc.SetToggleFilter("bogus"), ShouldWrap, toggle.ErrUnknownState)
		})
	})
}

func TestServiceProfiles(t *testing.T) {
	Convey("Given a started service with a totals notifier", t, func() {
		notifications := 0
		svc := startedService(t, service.WithTotalsNotifier(func() { notifications++ }))
		ctx := context.Background()

		Convey("Profile mutations flow through and notify", func() {
			p := svc.AddProfile(ctx, "Avocats", 4)
			So(notifications, ShouldEqual, 1)

			So(svc.SetProfileCount(ctx, p.ID, 6), ShouldBeNil)
			So(svc.SetProfileEnabled(ctx, p.ID, true), ShouldBeNil)
			So(notifications, ShouldEqual, 3)

			rep := svc.CheckProfileConsistency(6)
			So(rep.Consistent, ShouldBeTrue)

			So(svc.RemoveProfile(ctx, p.ID), ShouldBeNil)
			So(svc.ListProfiles(), ShouldBeEmpty)
		})
	})
}
