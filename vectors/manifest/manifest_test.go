package manifest

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-besseldata/internal/testutil"
	"github.com/cwbudde/algo-besseldata/vectors/ladder"
	"github.com/cwbudde/algo-besseldata/vectors/pipeline"
	"github.com/cwbudde/algo-besseldata/vectors/sampling"
	"github.com/cwbudde/algo-besseldata/vectors/table"
)

func runFiles(t *testing.T) []pipeline.File {
	t.Helper()
	var files []pipeline.File
	for _, spec := range pipeline.Specs() {
		res, err := pipeline.Generate(context.Background(), spec, &testutil.FakeOracle{})
		require.NoError(t, err)
		fs, err := res.Files()
		require.NoError(t, err)
		files = append(files, fs...)
	}
	return files
}

func TestBuild(t *testing.T) {
	files := runFiles(t)
	m, err := Build(sampling.DefaultSeed, ladder.DefaultRunLength, files)
	require.NoError(t, err)

	require.Len(t, m.Files, 8)
	require.Equal(t, sampling.DefaultSeed, m.Seed)
	require.Equal(t, ladder.DefaultRunLength, m.RunLength)

	_, err = uuid.Parse(m.RunID)
	require.NoError(t, err)

	for i := 1; i < len(m.Files); i++ {
		require.Less(t, m.Files[i-1].File, m.Files[i].File, "entries must be sorted")
	}

	byName := map[string]Entry{}
	for _, e := range m.Files {
		byName[e.File] = e
	}
	require.Equal(t, "complex", byName["zbesh1_test.txt"].Kind)
	require.Equal(t, "nu j zr zi cyr cyi", byName["zbesh1_test.txt"].Columns)
	require.Equal(t, 12, byName["zbesh1_test.txt"].Rows)
	require.Equal(t, "real", byName["zbesi_real_test.txt"].Kind)
	require.Equal(t, "zbesi", byName["zbesi_real_test.txt"].Pipeline)
	require.Len(t, byName["zbesi_real_test.txt"].SHA256, 64)
}

func TestMarshal_Stable(t *testing.T) {
	a, err := Build(sampling.DefaultSeed, 3, runFiles(t))
	require.NoError(t, err)
	b, err := Build(sampling.DefaultSeed, 3, runFiles(t))
	require.NoError(t, err)

	da, err := a.Marshal()
	require.NoError(t, err)
	db, err := b.Marshal()
	require.NoError(t, err)
	require.True(t, bytes.Equal(da, db))
	require.Equal(t, a.RunID, b.RunID)

	back, err := Parse(da)
	require.NoError(t, err)
	require.Equal(t, a, back)
}

func TestMarshal_CanonicalKeyOrder(t *testing.T) {
	m, err := Build(sampling.DefaultSeed, 3, runFiles(t)[:1])
	require.NoError(t, err)
	data, err := m.Marshal()
	require.NoError(t, err)

	s := string(data)
	require.True(t, bytes.HasPrefix(data, []byte(`{"files":[{"columns":`)), s)
	require.Less(t, bytes.Index(data, []byte(`"generator"`)), bytes.Index(data, []byte(`"run_id"`)))
	require.Equal(t, byte('\n'), data[len(data)-1])
}

func TestRunID_TracksContent(t *testing.T) {
	files := runFiles(t)
	a, err := Build(sampling.DefaultSeed, 3, files)
	require.NoError(t, err)

	changed := append([]pipeline.File(nil), files...)
	changed[0].Data = append(append([]byte(nil), changed[0].Data...), '\n')
	b, err := Build(sampling.DefaultSeed, 3, changed)
	require.NoError(t, err)

	require.NotEqual(t, a.RunID, b.RunID)
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(1, 3, nil)
	require.ErrorIs(t, err, errNoTables)

	_, err = Build(1, 3, []pipeline.File{{Name: FileName, Data: []byte("{}")}})
	require.Error(t, err)
}

func TestPeakMagnitude(t *testing.T) {
	c := table.New("c.txt", table.Complex)
	c.Rows = []table.TestCase{
		{Value: complex(3, 4)},
		{Value: complex(-1, 0)},
		{Value: complex(math.NaN(), 0)},
		{Value: complex(0, math.Inf(-1))},
	}
	peak, nonFinite := PeakMagnitude(c)
	require.InDelta(t, 5, peak, 1e-15)
	require.Equal(t, 2, nonFinite)

	r := table.New("r.txt", table.Real)
	r.Rows = []table.TestCase{{Value: -7}, {Value: 2}}
	peak, nonFinite = PeakMagnitude(r)
	require.Equal(t, 7.0, peak)
	require.Zero(t, nonFinite)

	empty := table.New("e.txt", table.Real)
	peak, _ = PeakMagnitude(empty)
	require.Zero(t, peak)
}

func TestPeakMagnitude_NoOverflow(t *testing.T) {
	c := table.New("c.txt", table.Complex)
	c.Rows = []table.TestCase{{Value: complex(1e300, 1e300)}}
	peak, _ := PeakMagnitude(c)
	require.InEpsilon(t, math.Sqrt2*1e300, peak, 1e-12)
}

func TestFile(t *testing.T) {
	m, err := Build(sampling.DefaultSeed, 3, runFiles(t))
	require.NoError(t, err)
	f, err := m.File()
	require.NoError(t, err)
	require.Equal(t, FileName, f.Name)
	require.Nil(t, f.Table)
}
