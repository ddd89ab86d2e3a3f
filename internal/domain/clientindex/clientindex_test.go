package clientindex_test

import (
	"context"
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tlibouban/deploycheck/internal/domain/clientindex"
	"github.com/tlibouban/deploycheck/internal/domain/model"
	"github.com/tlibouban/deploycheck/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func row(numero, name string, rest ...string) []string {
	return append([]string{numero, name, "Client"}, rest...)
}

func testRows() [][]string {
	return [][]string{
		{"262", "Cabinet Martin", "Client", "AIR", "4", "2", "1", "1", "0", "0", "0", "0", "0", "0", "0", "Morbihan"},
		{"1043", "SCP Durand & Associés", "Client", "NEO", "12", "5", "4", "3", "0", "0", "0", "0", "0", "0", "0", "Paris"},
		{"77", "Cabinet Petit", "Prospect", "Jarvis", "2", "1", "0", "1", "0", "0", "0", "0", "0", "0", "0", "Nord"},
	}
}

func TestLoad(t *testing.T) {
	Convey("Given a client index", t, func() {
		ctx := context.Background()
		idx := clientindex.New()

		Convey("When loading valid rows", func() {
			idx.Load(ctx, testRows())

			Convey("Then records and alias keys should be indexed", func() {
				So(idx.Loaded(), ShouldBeTrue)
				So(idx.Size(), ShouldEqual, 3)
				// "262" and "77" gain padded aliases, all three gain no
				// stripped alias (no leading zeros), so 3 + 2 keys.
				So(idx.KeyCount(), ShouldEqual, 5)
				So(idx.DroppedRows(), ShouldEqual, 0)
			})
		})

		Convey("When loading rows with missing identifier or name", func() {
			rows := append(testRows(),
				[]string{"", "No Number", "Client"},
				[]string{"900", "", "Client"},
				[]string{"901"},
			)
			idx.Load(ctx, rows)

			Convey("Then malformed rows should be dropped and counted", func() {
				So(idx.Size(), ShouldEqual, 3)
				So(idx.DroppedRows(), ShouldEqual, 3)
			})
		})

		Convey("When loading twice", func() {
			idx.Load(ctx, testRows())
			idx.Load(ctx, [][]string{row("500", "Only Client")})

			Convey("Then the second load should replace the first", func() {
				So(idx.Size(), ShouldEqual, 1)
				So(idx.FindExact(ctx, "262"), ShouldBeNil)
				So(idx.FindExact(ctx, "500"), ShouldNotBeNil)
			})
		})
	})
}

func TestAliasKeys(t *testing.T) {
	Convey("Given an index loaded with a short key", t, func() {
		ctx := context.Background()
		idx := clientindex.New()
		idx.Load(ctx, testRows())

		Convey("When looking up the raw, padded, and stripped variants", func() {
			raw := idx.FindExact(ctx, "262")
			padded := idx.FindExact(ctx, "0262")

			Convey("Then all variants should return the same record", func() {
				So(raw, ShouldNotBeNil)
				So(padded, ShouldNotBeNil)
				So(padded, ShouldEqual, raw) // same pointer, aliases never diverge
			})
		})

		Convey("When the stored key has leading zeros", func() {
			idx.Load(ctx, [][]string{row("0099", "Zero Led")})

			Convey("Then the stripped variant should resolve too", func() {
				a := idx.FindExact(ctx, "0099")
				b := idx.FindExact(ctx, "99")
				So(a, ShouldNotBeNil)
				So(b, ShouldEqual, a)
			})
		})
	})
}

func TestFindExact(t *testing.T) {
	Convey("Given a loaded index", t, func() {
		ctx := context.Background()
		idx := clientindex.New()
		idx.Load(ctx, testRows())

		Convey("When looking up an existing key", func() {
			rec := idx.FindExact(ctx, " 1043 ")

			Convey("Then the query should be trimmed and the record returned", func() {
				So(rec, ShouldNotBeNil)
				So(rec.Name, ShouldEqual, "SCP Durand & Associés")
				So(rec.Kind, ShouldEqual, model.KindClient)
				So(rec.Department, ShouldEqual, "Paris")
			})
		})

		Convey("When looking up an unknown key", func() {
			So(idx.FindExact(ctx, "9999"), ShouldBeNil)
		})

		Convey("When the index is not loaded", func() {
			empty := clientindex.New()

			Convey("Then lookups should return nil without panicking", func() {
				So(empty.FindExact(ctx, "262"), ShouldBeNil)
			})
		})
	})
}

func TestFindApproximate(t *testing.T) {
	Convey("Given a loaded index", t, func() {
		ctx := context.Background()
		idx := clientindex.New()
		idx.Load(ctx, testRows())

		Convey("When the query is a substring of an indexed key", func() {
			rec, key := idx.FindApproximate(ctx, "04")

			Convey("Then the first matching key wins", func() {
				So(rec, ShouldNotBeNil)
				So(key, ShouldEqual, "1043")
			})
		})

		Convey("When an indexed key is a substring of the query", func() {
			rec, key := idx.FindApproximate(ctx, "77-bis")

			Convey("Then that key should match", func() {
				So(rec, ShouldNotBeNil)
				So(key, ShouldEqual, "77")
				So(rec.Name, ShouldEqual, "Cabinet Petit")
			})
		})

		Convey("When nothing qualifies", func() {
			rec, key := idx.FindApproximate(ctx, "888")
			So(rec, ShouldBeNil)
			So(key, ShouldBeEmpty)
		})
	})
}

func TestLookup(t *testing.T) {
	Convey("Given a loaded index", t, func() {
		ctx := context.Background()
		idx := clientindex.New()
		idx.Load(ctx, testRows())

		Convey("When an exact match exists", func() {
			m, ok := idx.Lookup(ctx, "262")

			Convey("Then the match should be exact, never approximate", func() {
				So(ok, ShouldBeTrue)
				So(m.Exact, ShouldBeTrue)
				So(m.Record.Name, ShouldEqual, "Cabinet Martin")
			})
		})

		Convey("When only an approximate match exists", func() {
			m, ok := idx.Lookup(ctx, "104")

			Convey("Then the match should be flagged approximate", func() {
				So(ok, ShouldBeTrue)
				So(m.Exact, ShouldBeFalse)
				So(m.Key, ShouldEqual, "1043")
			})
		})

		Convey("When nothing matches", func() {
			_, ok := idx.Lookup(ctx, "zzz")
			So(ok, ShouldBeFalse)
		})

		Convey("When the same query is repeated", func() {
			first, ok1 := idx.Lookup(ctx, "104")
			before := idx.CacheSize()
			second, ok2 := idx.Lookup(ctx, "104")

			Convey("Then the cache hit should reproduce the miss result exactly", func() {
				So(ok1, ShouldBeTrue)
				So(ok2, ShouldBeTrue)
				So(second.Record, ShouldEqual, first.Record)
				So(second.Key, ShouldEqual, first.Key)
				So(second.Exact, ShouldEqual, first.Exact)
				So(idx.CacheSize(), ShouldEqual, before)
			})
		})

		Convey("When the query is empty", func() {
			_, ok := idx.Lookup(ctx, "   ")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestFindByName(t *testing.T) {
	Convey("Given a loaded index", t, func() {
		ctx := context.Background()
		idx := clientindex.New()
		idx.Load(ctx, testRows())

		Convey("When the stored name contains the query", func() {
			rec := idx.FindByName(ctx, "durand")
			So(rec, ShouldNotBeNil)
			So(rec.Numero, ShouldEqual, "1043")
		})

		Convey("When the query contains the stored name", func() {
			rec := idx.FindByName(ctx, "le cabinet petit de lille")
			So(rec, ShouldNotBeNil)
			So(rec.Numero, ShouldEqual, "77")
		})

		Convey("When nothing matches", func() {
			So(idx.FindByName(ctx, "inconnu"), ShouldBeNil)
		})
	})
}

func TestSuggest(t *testing.T) {
	Convey("Given a loaded index", t, func() {
		ctx := context.Background()
		idx := clientindex.New()
		idx.Load(ctx, [][]string{
			row("1", "Cabinet Martin"),
			row("2", "Cabinet Morel"),
			row("3", "Martin & Fils"),
		})

		Convey("When suggesting for a prefix", func() {
			s := idx.Suggest(ctx, "ma", 8)

			Convey("Then prefix matches should come before containment matches", func() {
				So(len(s), ShouldEqual, 2)
				So(s[0].Name, ShouldEqual, "Martin & Fils")
				So(s[1].Name, ShouldEqual, "Cabinet Martin")
			})
		})

		Convey("When the cap is smaller than the candidate set", func() {
			s := idx.Suggest(ctx, "cabinet", 1)
			So(len(s), ShouldEqual, 1)
		})

		Convey("When the query is too short", func() {
			So(idx.Suggest(ctx, "m", 8), ShouldBeNil)
		})
	})
}
