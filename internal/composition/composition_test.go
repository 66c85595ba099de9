package composition

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/price2video/internal/model"
	"github.com/ivlev/price2video/internal/timeline"
)

var settings = Settings{
	FPS:    30,
	Width:  1080,
	Height: 1920,
	Timing: timeline.Params{
		PageCapacity:    15,
		TitleFrames:     60,
		PageFrames:      150,
		EndingFrames:    90,
		AudioLoopFrames: 420,
	},
}

func sample(n int) []model.PriceRecord {
	out := make([]model.PriceRecord, n)
	for i := range out {
		out[i] = model.PriceRecord{Name: fmt.Sprintf("veg-%d", i), AveragePrice: 1.25 * float64(i+1), Unit: "kg"}
	}
	return out
}

func TestBuild(t *testing.T) {
	c, err := Build("", "Daily prices", sample(37), settings)
	require.NoError(t, err)

	assert.Equal(t, DefaultID, c.ID)
	assert.Equal(t, "Daily prices", c.Title)
	assert.Equal(t, 600, c.TotalFrames)
	assert.Equal(t, 20.0, c.DurationSeconds())
	assert.Len(t, c.Sections, 5)
	assert.Len(t, c.Pages, 3)
	assert.Len(t, c.AudioSegments, 2)
	assert.Len(t, c.Records, 37)
}

func TestBuildWithoutRecords(t *testing.T) {
	c, err := Build("PriceVideo", "Empty", nil, settings)
	require.NoError(t, err)
	assert.Equal(t, 150, c.TotalFrames)
	assert.Len(t, c.Sections, 2)
	assert.Empty(t, c.Pages)
}

func TestBuildRejectsBadSettings(t *testing.T) {
	bad := settings
	bad.FPS = 0
	_, err := Build("", "x", sample(3), bad)
	assert.Error(t, err)

	bad = settings
	bad.Timing.AudioLoopFrames = 0
	_, err = Build("", "x", sample(3), bad)
	assert.Error(t, err)
}

func TestNewValidation(t *testing.T) {
	recs := sample(3)
	pages, err := timeline.Paginate(recs, 15)
	require.NoError(t, err)

	_, err = New("", "t", recs, pages, &model.Timeline{}, settings)
	assert.ErrorIs(t, err, ErrNoSections)

	_, err = New("", "t", recs, pages, &model.Timeline{
		Sections: []model.Section{{Kind: model.SectionTitle, PageIndex: -1}},
	}, settings)
	assert.ErrorIs(t, err, ErrNoFrames)

	_, err = New("", "t", recs, pages, &model.Timeline{
		Sections: []model.Section{
			{Kind: model.SectionTitle, PageIndex: -1, DurationFrames: 60},
			{Kind: model.SectionEnding, PageIndex: -1, StartFrame: 60, DurationFrames: 90},
		},
		TotalFrames: 150,
	}, settings)
	assert.ErrorIs(t, err, ErrNoDataSection)
}

func TestNewCopiesInputs(t *testing.T) {
	recs := sample(4)
	c, err := Build("", "t", recs, settings)
	require.NoError(t, err)

	recs[0].Name = "changed"
	assert.Equal(t, "veg-0", c.Records[0].Name)
	assert.Equal(t, "veg-0", c.Pages[0].Records[0].Name)
}

func TestSectionAt(t *testing.T) {
	c, err := Build("", "t", sample(20), settings)
	require.NoError(t, err)

	s, ok := c.SectionAt(0)
	require.True(t, ok)
	assert.Equal(t, model.SectionTitle, s.Kind)

	s, ok = c.SectionAt(210)
	require.True(t, ok)
	assert.Equal(t, model.SectionPage, s.Kind)
	assert.Equal(t, 1, s.PageIndex)

	page, ok := c.Page(s)
	require.True(t, ok)
	assert.Len(t, page.Records, 5)

	s, ok = c.SectionAt(c.TotalFrames - 1)
	require.True(t, ok)
	assert.Equal(t, model.SectionEnding, s.Kind)

	_, ok = c.SectionAt(c.TotalFrames)
	assert.False(t, ok)
}

func TestRows(t *testing.T) {
	up, down := 0.456, -1.2
	page := model.Page{Records: []model.PriceRecord{
		{Name: "Tomato", AveragePrice: 3.5, ChangeOneDay: &up, ChangeSevenDay: &down, Unit: "kg"},
		{Name: "Leek", AveragePrice: 2},
	}}

	rows := Rows(page)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Name: "Tomato", Price: "3.50", Unit: "kg", OneDay: "+0.46", SevenDay: "-1.20", Direction: 1}, rows[0])
	assert.Equal(t, Row{Name: "Leek", Price: "2.00", OneDay: "--", SevenDay: "--", Direction: 0}, rows[1])
}

func TestPropsRoundTrip(t *testing.T) {
	c, err := Build("", "Props", sample(16), settings)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "props.json")
	require.NoError(t, WriteProps(c, path))

	got, err := ReadProps(path)
	require.NoError(t, err)
	assert.Equal(t, c.TotalFrames, got.TotalFrames)
	assert.Equal(t, c.Sections, got.Sections)
	assert.Equal(t, c.AudioSegments, got.AudioSegments)
}
