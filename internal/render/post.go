package render

import "math"

// PostPipeline groups post stages; all are optional. Stages run in field order.
type PostPipeline struct {
	Scale   func([]Color)
	ToneMap func([]Color)
	Limiter func([]Color)
}

func (p PostPipeline) apply(buf []Color) {
	if p.Scale != nil {
		p.Scale(buf)
	}
	if p.ToneMap != nil {
		p.ToneMap(buf)
	}
	if p.Limiter != nil {
		p.Limiter(buf)
	}
}

// LimiterConfig drives DefaultLimiter.
//   - WhiteCap: per-LED cap on R+G+B in linear space (0 or >= 3 disables)
//   - ChanMA: mA per color channel at full scale (WS2812 ≈ 20)
//   - BudgetMA: global budget in mA (0 disables)
//   - Knee: fraction of budget where soft limiting begins (default 0.9)
type LimiterConfig struct {
	WhiteCap float64
	ChanMA   float64
	BudgetMA float64
	Knee     float64
}

// ScaleBrightness returns a stage multiplying every channel by s.
func ScaleBrightness(s float64) func([]Color) {
	f := float32(s)
	return func(buf []Color) { applyGlobalScale(buf, f) }
}

// GammaToneMap returns a stage raising each channel to gamma. A gamma of 1 or
// less than or equal to 0 returns nil.
func GammaToneMap(gamma float64) func([]Color) {
	if gamma <= 0 || gamma == 1 {
		return nil
	}
	return func(buf []Color) {
		for i := range buf {
			buf[i].R = powf(clamp01(buf[i].R), gamma)
			buf[i].G = powf(clamp01(buf[i].G), gamma)
			buf[i].B = powf(clamp01(buf[i].B), gamma)
		}
	}
}

// DefaultLimiter applies a two-stage limiter:
// 1) Per-LED white cap: scales (R,G,B) so R+G+B <= WhiteCap
// 2) Global current budget: estimates current and scales the whole frame to stay under BudgetMA
func DefaultLimiter(buf []Color, c LimiterConfig) {
	whiteCap := 3.0
	chanmA := 20.0
	knee := 0.9
	if c.WhiteCap > 0 {
		whiteCap = c.WhiteCap
	}
	if c.ChanMA > 0 {
		chanmA = c.ChanMA
	}
	if c.Knee > 0 && c.Knee < 1 {
		knee = c.Knee
	}

	// 1) Per-LED white cap
	if whiteCap < 3 {
		wc := float32(whiteCap)
		for i := range buf {
			s := buf[i].R + buf[i].G + buf[i].B
			if s > wc && s > 0 {
				scale := wc / s
				buf[i].R *= scale
				buf[i].G *= scale
				buf[i].B *= scale
			}
		}
	}

	// 2) Global budget
	budget := c.BudgetMA
	if budget <= 0 {
		return
	}
	total := EstimateCurrent(buf, chanmA)
	if total <= 0 {
		return
	}
	// Soft knee: start scaling gently after knee*budget, fully meet budget above budget
	ratio := total / budget
	if ratio <= 1.0 {
		if ratio <= knee {
			return
		}
		// map ratio in [knee,1] to scale s in [1, budget/total]
		minS := budget / total
		t := (ratio - knee) / (1.0 - knee)
		applyGlobalScale(buf, float32(1.0-t*(1.0-minS)))
		return
	}
	applyGlobalScale(buf, float32(budget/total))
}

// EstimateCurrent returns the frame's draw in mA assuming chanmA per channel at full scale.
func EstimateCurrent(buf []Color, chanmA float64) float64 {
	var total float64
	cm := float32(chanmA)
	for i := range buf {
		total += float64((buf[i].R + buf[i].G + buf[i].B) * cm)
	}
	return total
}

func applyGlobalScale(buf []Color, s float32) {
	if s >= 1.0 {
		return
	}
	for i := range buf {
		buf[i].R *= s
		buf[i].G *= s
		buf[i].B *= s
	}
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func powf(x float32, p float64) float32 {
	return float32(math.Pow(float64(x), p))
}
