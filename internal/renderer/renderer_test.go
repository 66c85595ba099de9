package renderer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ivlev/price2video/internal/model"
)

func TestInterpolateKeyframes(t *testing.T) {
	keyframes := []Keyframe{
		{Frame: 0, Style: Style{Opacity: 0, Scale: 0.9}},
		{Frame: 10, Style: Style{Opacity: 1, Scale: 1}},
		{Frame: 20, Style: Style{Opacity: 0, Scale: 1}},
	}

	tests := []struct {
		frame           int
		expectedOpacity float64
	}{
		{-5, 0},
		{0, 0},
		{5, 0.5},
		{10, 1},
		{15, 0.5},
		{20, 0},
		{30, 0},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			state := InterpolateKeyframes(keyframes, tt.frame)
			assert.InDelta(t, tt.expectedOpacity, state.Opacity, 1e-9, "frame %d", tt.frame)
		})
	}
}

func TestStyleAtSection(t *testing.T) {
	s := model.Section{Kind: model.SectionPage, PageIndex: 0, StartFrame: 60, DurationFrames: 150}

	first := StyleAt(s, 60, DefaultMotion)
	assert.Equal(t, 0.0, first.Opacity)
	assert.Equal(t, DefaultMotion.EntryScale, first.Scale)

	mid := StyleAt(s, 135, DefaultMotion)
	assert.Equal(t, rest, mid)

	last := StyleAt(s, 209, DefaultMotion)
	assert.Equal(t, 0.0, last.Opacity)

	outside := StyleAt(s, 210, DefaultMotion)
	assert.Equal(t, 0.0, outside.Opacity)
}

func TestStyleAtShortSection(t *testing.T) {
	s := model.Section{Kind: model.SectionTitle, PageIndex: -1, StartFrame: 0, DurationFrames: 2}
	assert.Equal(t, rest, StyleAt(s, 0, DefaultMotion))

	s.DurationFrames = 9
	kfs := SectionKeyframes(s, DefaultMotion)
	assert.Equal(t, 3, kfs[1].Frame)
	assert.Equal(t, 5, kfs[2].Frame)
}

func TestStyleAtIsPure(t *testing.T) {
	s := model.Section{Kind: model.SectionEnding, PageIndex: -1, StartFrame: 510, DurationFrames: 90}
	for f := 500; f < 610; f++ {
		assert.Equal(t, StyleAt(s, f, DefaultMotion), StyleAt(s, f, DefaultMotion))
		st := StyleAt(s, f, DefaultMotion)
		assert.GreaterOrEqual(t, st.Opacity, 0.0)
		assert.LessOrEqual(t, st.Opacity, 1.0)
	}
}

func TestExprConstantWithoutKeyframes(t *testing.T) {
	assert.Equal(t, "1", Expr(nil, 0, Opacity))
}

func TestExprShape(t *testing.T) {
	s := model.Section{Kind: model.SectionPage, PageIndex: 0, StartFrame: 60, DurationFrames: 150}
	expr := Expr(SectionKeyframes(s, DefaultMotion), s.StartFrame, Opacity)

	assert.True(t, strings.HasPrefix(expr, "if(lt(n,60),0,"))
	assert.Contains(t, expr, "if(lt(n,75),0+(1)*")
	assert.Contains(t, expr, "((n-60)/15)")
	// hold segment is constant
	assert.Contains(t, expr, "if(lt(n,194),1,")
	assert.Equal(t, strings.Count(expr, "("), strings.Count(expr, ")"))
}

func TestExprScale(t *testing.T) {
	s := model.Section{Kind: model.SectionPage, PageIndex: 0, StartFrame: 60, DurationFrames: 150}
	expr := Expr(SectionKeyframes(s, DefaultMotion), s.StartFrame, Scale)

	assert.True(t, strings.HasPrefix(expr, "if(lt(n,60),0.9,"))
	assert.Contains(t, expr, "if(lt(n,75),0.9+(0.1)*")
	// exit keeps full size
	assert.True(t, strings.HasSuffix(expr, ",1,1))))"))
}

func TestNum(t *testing.T) {
	assert.Equal(t, "0.9", num(0.9))
	assert.Equal(t, "40", num(40))
	assert.Equal(t, "-20", num(-20))
	assert.Equal(t, "0", num(-0.00001))
	assert.Equal(t, "0.3333", num(1.0/3))
}
