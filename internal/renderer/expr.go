package renderer

import (
	"fmt"
	"strconv"
	"strings"
)

// Expr converts keyframes into an ffmpeg expression of the frame number n.
// Keyframes are section-local; start shifts them to absolute frames.
// The curve eases between keyframes the same way InterpolateKeyframes does.
func Expr(keyframes []Keyframe, start int, value func(Style) float64) string {
	if len(keyframes) == 0 {
		return num(value(rest))
	}

	last := keyframes[len(keyframes)-1]
	expr := num(value(last.Style))
	for i := len(keyframes) - 2; i >= 0; i-- {
		prev, next := keyframes[i], keyframes[i+1]
		a, b := value(prev.Style), value(next.Style)
		from, to := start+prev.Frame, start+next.Frame

		piece := num(a)
		if a != b && to > from {
			t := fmt.Sprintf("((n-%d)/%d)", from, to-from)
			piece = fmt.Sprintf("%s+(%s)*%s", num(a), num(b-a), easeExpr(t))
		}
		expr = fmt.Sprintf("if(lt(n,%d),%s,%s)", to, piece, expr)
	}

	first := keyframes[0]
	return fmt.Sprintf("if(lt(n,%d),%s,%s)", start+first.Frame, num(value(first.Style)), expr)
}

// easeExpr is easeInOutCubic over the expression t.
func easeExpr(t string) string {
	return fmt.Sprintf("if(lt(%[1]s,0.5),4*pow(%[1]s,3),1-pow(2-2*%[1]s,3)/2)", t)
}

func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" || s == "-0" {
		return "0"
	}
	return s
}

// Opacity, TranslateY and Scale select one channel of a Style.
func Opacity(s Style) float64    { return s.Opacity }
func TranslateY(s Style) float64 { return s.TranslateY }
func Scale(s Style) float64      { return s.Scale }
