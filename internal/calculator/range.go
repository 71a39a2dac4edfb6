package calculator

import (
	"math"

	"MetalBoard/internal/model"
)

// RollingMax returns, for every index i, the highest value over the period
// bars ending at i-lag. Undefined when the window is incomplete or holds an
// undefined value.
func RollingMax(values []model.Num, period, lag int) []model.Num {
	return rollingExtreme(values, period, lag, math.Inf(-1), func(a, b float64) bool { return a > b })
}

// RollingMin is RollingMax for the lowest value.
func RollingMin(values []model.Num, period, lag int) []model.Num {
	return rollingExtreme(values, period, lag, math.Inf(1), func(a, b float64) bool { return a < b })
}

func rollingExtreme(values []model.Num, period, lag int, seed float64, better func(a, b float64) bool) []model.Num {
	out := make([]model.Num, len(values))
	if period <= 0 || lag < 0 {
		return out
	}
	for i := range values {
		end := i - lag
		start := end - period + 1
		if start < 0 {
			continue
		}
		ext := seed
		ok := true
		for j := start; j <= end; j++ {
			if !values[j].Valid {
				ok = false
				break
			}
			if better(values[j].Val, ext) {
				ext = values[j].Val
			}
		}
		if ok {
			out[i] = model.Some(ext)
		}
	}
	return out
}

// PositionRatio returns where close sits within the bar's high-low range,
// (close-low)/(high-low). Undefined for a zero-width bar or missing input.
func PositionRatio(close, high, low model.Num) model.Num {
	if !close.Valid || !high.Valid || !low.Valid {
		return model.Undefined
	}
	width := high.Val - low.Val
	if width == 0 {
		return model.Undefined
	}
	return model.Some((close.Val - low.Val) / width)
}

// LaggedRatio returns the position ratio of the bar k bars before i.
func LaggedRatio(points []model.PricePoint, i, k int) model.Num {
	j := i - k
	if k < 0 || j < 0 || j >= len(points) {
		return model.Undefined
	}
	p := points[j]
	return PositionRatio(p.Close, p.High, p.Low)
}
