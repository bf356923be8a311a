package importer

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/okian/handicap/internal/domain/handicap"
)

func buildXLSX(t *testing.T, rows [][]string) []byte {
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for idx, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, idx+1)
		require.NoError(t, err)
		cells := make([]interface{}, len(row))
		for i, val := range row {
			cells[i] = val
		}
		require.NoError(t, f.SetSheetRow(sheet, axis, &cells))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())
	return buf.Bytes()
}

func TestFactoryGetParser(t *testing.T) {
	f := NewFactory()

	for name, want := range map[string]Parser{
		"rounds.json":  &JSONParser{},
		"ROUNDS.CSV":   &CSVParser{},
		"rounds.xlsx":  &XLSXParser{},
		"a/b/c.v1.csv": &CSVParser{},
	} {
		p, err := f.GetParser(name)
		require.NoError(t, err, name)
		require.IsType(t, want, p, name)
	}

	_, err := f.GetParser("rounds.txt")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestJSONParserExport(t *testing.T) {
	data := []byte(`{
		"rounds": [
			{"id": "e1", "ags": 95, "cr": 72.0, "slope": 120, "diff": 21.7},
			{"ags": "88", "cr": "71", "slope": "113"}
		],
		"settings": {"useCount": 8, "bonus": 0, "targetSlope": 120}
	}`)

	p, err := NewFactory(WithDefaultPlayer("alice")).GetParser("export.json")
	require.NoError(t, err)
	rounds, err := p.Parse(data)
	require.NoError(t, err)
	require.Len(t, rounds, 2)

	require.Equal(t, "e1", rounds[0].ID)
	require.Equal(t, "alice", rounds[0].PlayerID)
	require.Equal(t, 18, rounds[0].HolesPlayed)
	require.Equal(t, 120.0, rounds[0].SlopeRating)

	require.NotEmpty(t, rounds[1].ID)
	require.Equal(t, 88.0, rounds[1].AdjustedGrossScore)
	require.Equal(t, 71.0, rounds[1].CourseRating)
}

func TestJSONParserExportMissingRatings(t *testing.T) {
	data := []byte(`{"rounds": [
		{"id": "a", "ags": 90, "slope": 113},
		{"id": "b", "ags": 90, "cr": "n/a", "slope": 113},
		{"id": "c", "ags": null, "cr": 72, "slope": 113, "pcc": "?"}
	]}`)

	rounds, err := (&JSONParser{cfg: defaultConfig()}).Parse(data)
	require.NoError(t, err)
	require.Len(t, rounds, 3)

	require.True(t, math.IsNaN(rounds[0].CourseRating), "missing cr is not a zero rating")
	require.True(t, math.IsNaN(rounds[1].CourseRating), "junk cr is not a zero rating")
	require.True(t, math.IsNaN(rounds[2].AdjustedGrossScore))
	require.Equal(t, 0.0, rounds[2].PCC, "unreadable pcc means no adjustment")

	for _, r := range rounds {
		_, ok := handicap.RoundDifferential(r)
		require.False(t, ok, r.ID)
	}
	idx := handicap.Compute(rounds)
	require.False(t, idx.HasValue())
	require.Equal(t, 0, idx.DifferentialsAvailable)
}

func TestJSONParserHistory(t *testing.T) {
	data := []byte(`[
		{"id": "c1", "ts": "2025-05-10T09:00:00Z", "course": "Pine", "holes": 3,
		 "par": [4, 3, 5], "scores": {"bob": [5, 3, 6], "amy": ["4", "", 5]}},
		{"id": "c2", "ts": "2025-05-11T09:00:00Z", "course": "Oak",
		 "par": [4, 4], "scores": {"amy": [4, 4]}, "cr": 7.5, "slope": 130}
	]`)

	rounds, err := (&JSONParser{cfg: defaultConfig()}).Parse(data)
	require.NoError(t, err)
	require.Len(t, rounds, 3)

	require.Equal(t, "c1:amy", rounds[0].ID)
	require.Equal(t, 9.0, rounds[0].AdjustedGrossScore)
	require.Equal(t, 12.0, rounds[0].CourseRating)
	require.Equal(t, 113.0, rounds[0].SlopeRating)
	require.Equal(t, "c1:bob", rounds[1].ID)

	require.Equal(t, 2, rounds[2].HolesPlayed, "holes falls back to the par length")
	require.Equal(t, 7.5, rounds[2].CourseRating)
	require.Equal(t, 130.0, rounds[2].SlopeRating)
	require.Equal(t, time.Date(2025, time.May, 11, 9, 0, 0, 0, time.UTC), rounds[2].TS.UTC())
}

func TestJSONParserErrors(t *testing.T) {
	p := &JSONParser{cfg: defaultConfig()}

	_, err := p.Parse([]byte("  "))
	require.ErrorIs(t, err, ErrEmpty)

	_, err = p.Parse([]byte(`{"rounds": []}`))
	require.ErrorIs(t, err, ErrEmpty)

	_, err = p.Parse([]byte(`{"rounds": `))
	require.Error(t, err)
}

func TestCSVParser(t *testing.T) {
	data := []byte("Player,TS,Course,Holes,AGS,CR,Slope,PCC,ID\n" +
		"alice,2025-05-10,Pine,18,95,72.0,120,,r1\n" +
		"\n" +
		"bob,2025-05-11T08:30:00Z,Pine,9,45,36,,1,\n")

	rounds, err := (&CSVParser{cfg: defaultConfig()}).Parse(data)
	require.NoError(t, err)
	require.Len(t, rounds, 2)

	require.Equal(t, "r1", rounds[0].ID)
	require.Equal(t, 0.0, rounds[0].PCC)
	require.Equal(t, time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC), rounds[0].TS)

	require.Equal(t, "bob", rounds[1].PlayerID)
	require.Equal(t, 9, rounds[1].HolesPlayed)
	require.Equal(t, 113.0, rounds[1].SlopeRating, "blank slope falls back to 113")
	require.Equal(t, 1.0, rounds[1].PCC)
	require.NotEmpty(t, rounds[1].ID)
}

func TestCSVParserErrors(t *testing.T) {
	p := &CSVParser{cfg: defaultConfig()}

	t.Run("missing column", func(t *testing.T) {
		_, err := p.Parse([]byte("player,ags,cr\nalice,90,72\n"))
		require.ErrorIs(t, err, ErrMissingColumn)
	})

	t.Run("bad number names the line", func(t *testing.T) {
		_, err := p.Parse([]byte("player,ags,cr,slope\nalice,90,72,113\nbob,ninety,72,113\n"))
		require.ErrorIs(t, err, ErrInvalidRow)
		require.Contains(t, err.Error(), "line 3")
	})

	t.Run("blank rating", func(t *testing.T) {
		_, err := p.Parse([]byte("player,ags,cr,slope\nalice,90,,113\n"))
		require.ErrorIs(t, err, ErrInvalidRow)
	})

	t.Run("header only", func(t *testing.T) {
		_, err := p.Parse([]byte("player,ags,cr,slope\n"))
		require.ErrorIs(t, err, ErrEmpty)
	})
}

func TestXLSXParser(t *testing.T) {
	data := buildXLSX(t, [][]string{
		{"player", "course", "holes", "ags", "cr", "slope"},
		{"alice", "Pine", "18", "95", "72", "120"},
		{"carol", "Oak", "18", "101.5", "73.1", "131"},
	})

	rounds, err := (&XLSXParser{cfg: defaultConfig()}).Parse(data)
	require.NoError(t, err)
	require.Len(t, rounds, 2)
	require.Equal(t, "carol", rounds[1].PlayerID)
	require.Equal(t, 101.5, rounds[1].AdjustedGrossScore)
	require.Equal(t, 73.1, rounds[1].CourseRating)

	_, err = (&XLSXParser{cfg: defaultConfig()}).Parse([]byte("player,ags\n"))
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.csv")
	require.NoError(t, os.WriteFile(path, []byte("player,ags,cr,slope\nalice,90,72,113\n"), 0o600))

	f := NewFactory()
	rounds, err := f.LoadFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rounds, 1)

	_, err = f.LoadFile(context.Background(), filepath.Join(dir, "missing.csv"))
	require.True(t, errors.Is(err, os.ErrNotExist))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.LoadFile(ctx, path)
	require.ErrorIs(t, err, context.Canceled)
}
