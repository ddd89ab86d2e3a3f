package dataset_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/tlibouban/deploycheck/internal/adapters/dataset"
	"github.com/tlibouban/deploycheck/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadClientRows(t *testing.T) {
	Convey("Given a tab-separated client export", t, func() {
		l := dataset.NewLoader()
		ctx := context.Background()

		Convey("When the file has a header and data rows", func() {
			content := "numero\tnom\ttype\terp\teffectif\n" +
				"0262\tCabinet Martin\tClient\tNEO\t12\n" +
				"1043\tSCP Dubois & Associés\tProspect\tAIR\t5\n"
			path := writeTempFile(t, "clients.tsv", content)

			rows, err := l.LoadClientRows(ctx, path)

			Convey("Then the header is stripped and cells preserved", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 2)
				So(rows[0][0], ShouldEqual, "0262")
				So(rows[0][1], ShouldEqual, "Cabinet Martin")
				So(rows[1][4], ShouldEqual, "5")
			})
		})

		Convey("When rows have differing column counts", func() {
			content := "numero\tnom\n0262\tCabinet Martin\tClient\textra\n99\tShort\n"
			path := writeTempFile(t, "ragged.tsv", content)

			rows, err := l.LoadClientRows(ctx, path)

			Convey("Then ragged rows are returned as-is", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 2)
				So(rows[0], ShouldHaveLength, 4)
				So(rows[1], ShouldHaveLength, 2)
			})
		})

		Convey("When the file is empty", func() {
			path := writeTempFile(t, "empty.tsv", "")

			rows, err := l.LoadClientRows(ctx, path)

			So(err, ShouldBeNil)
			So(rows, ShouldBeEmpty)
		})

		Convey("When the file does not exist", func() {
			_, err := l.LoadClientRows(ctx, filepath.Join(t.TempDir(), "missing.tsv"))

			So(err, ShouldWrap, dataset.ErrOpenDataset)
		})
	})
}

func TestLoadRoster(t *testing.T) {
	Convey("Given a trainer roster file", t, func() {
		l := dataset.NewLoader()
		ctx := context.Background()

		Convey("When the JSON is valid", func() {
			content := `[
			  {"zone": "Est", "department": "Bas-Rhin", "trainers": [
			    {"first_name": "Claire", "last_name": "Weber", "specialty": "AIR", "email": "claire.weber@example.fr"}
			  ]},
			  {"zone": "Ouest", "department": "Morbihan", "trainers": []}
			]`
			path := writeTempFile(t, "roster.json", content)

			zones, err := l.LoadRoster(ctx, path)

			Convey("Then zones and trainers are decoded", func() {
				So(err, ShouldBeNil)
				So(zones, ShouldHaveLength, 2)
				So(zones[0].Zone, ShouldEqual, "Est")
				So(zones[0].Trainers, ShouldHaveLength, 1)
				So(zones[0].Trainers[0].Email, ShouldEqual, "claire.weber@example.fr")
				So(zones[1].Trainers, ShouldBeEmpty)
			})
		})

		Convey("When the JSON is malformed", func() {
			path := writeTempFile(t, "bad.json", `{"zone": "Est"`)

			_, err := l.LoadRoster(ctx, path)

			So(err, ShouldWrap, dataset.ErrParseDataset)
		})

		Convey("When the file does not exist", func() {
			_, err := l.LoadRoster(ctx, filepath.Join(t.TempDir(), "missing.json"))

			So(err, ShouldWrap, dataset.ErrOpenDataset)
		})
	})
}
