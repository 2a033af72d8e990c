package decision

import (
	"fmt"
	"math"

	"issue-classifier/internal/domain/entity"
)

// QualityGate rejects rasters that cannot be a real photo of an issue,
// using pixel statistics only.
type QualityGate struct {
	th entity.Thresholds
}

// NewQualityGate creates a gate with the given bounds.
func NewQualityGate(th entity.Thresholds) *QualityGate {
	return &QualityGate{th: th}
}

// Evaluate runs the checks in order and reports the first one that fails.
func (g *QualityGate) Evaluate(r *entity.Raster) entity.QualityVerdict {
	if r.Empty() {
		return reject("Image is empty")
	}

	st := measure(r)

	if st.brightness < g.th.MinBrightness {
		return reject(fmt.Sprintf("Image too dark (avg brightness: %.0f/255)", st.brightness))
	}
	if st.brightness > g.th.MaxBrightness {
		return reject(fmt.Sprintf("Image too bright/white (avg brightness: %.0f/255)", st.brightness))
	}
	if st.variance < g.th.MinVariance {
		return reject(fmt.Sprintf("Image lacks detail/texture (variance: %.0f)", st.variance))
	}
	if st.edgeDensity < g.th.MinEdgeDensity {
		return reject(fmt.Sprintf("Image has no distinct features (edge density: %.3f)", st.edgeDensity))
	}
	if st.colorDiversity < g.th.MinColorDiversity {
		return reject("Image is mostly a single color")
	}

	return entity.QualityVerdict{Passed: true}
}

func reject(reason string) entity.QualityVerdict {
	return entity.QualityVerdict{Passed: false, Reason: reason}
}

type pixelStats struct {
	brightness     float64
	variance       float64
	edgeDensity    float64
	colorDiversity float64
}

func measure(r *entity.Raster) pixelStats {
	n := r.Width * r.Height
	pix := r.Pix[:n*3]

	var sum [3]float64
	for i := 0; i < n; i++ {
		sum[0] += float64(pix[i*3])
		sum[1] += float64(pix[i*3+1])
		sum[2] += float64(pix[i*3+2])
	}
	var mean [3]float64
	for c := range mean {
		mean[c] = sum[c] / float64(n)
	}
	brightness := (sum[0] + sum[1] + sum[2]) / float64(3*n)

	var sq [3]float64
	var total float64
	for i := 0; i < n; i++ {
		for c := 0; c < 3; c++ {
			v := float64(pix[i*3+c])
			sq[c] += (v - mean[c]) * (v - mean[c])
			total += (v - brightness) * (v - brightness)
		}
	}
	var diversity float64
	for c := range sq {
		diversity += math.Sqrt(sq[c] / float64(n))
	}

	return pixelStats{
		brightness:     brightness,
		variance:       total / float64(3*n),
		edgeDensity:    edgeDensity(r),
		colorDiversity: diversity / 3,
	}
}

// edgeDensity is the mean absolute first difference of the gray image along
// both axes, normalized to [0,2].
func edgeDensity(r *entity.Raster) float64 {
	gray := make([]float64, r.Width*r.Height)
	for i := range gray {
		gray[i] = (float64(r.Pix[i*3]) + float64(r.Pix[i*3+1]) + float64(r.Pix[i*3+2])) / 3
	}

	var dx, dy float64
	var nx, ny int
	for y := 0; y < r.Height; y++ {
		row := gray[y*r.Width : (y+1)*r.Width]
		for x := 1; x < r.Width; x++ {
			dx += math.Abs(row[x] - row[x-1])
			nx++
		}
		if y == 0 {
			continue
		}
		prev := gray[(y-1)*r.Width : y*r.Width]
		for x := 0; x < r.Width; x++ {
			dy += math.Abs(row[x] - prev[x])
			ny++
		}
	}

	// A single row or column has no differences along that axis.
	var mx, my float64
	if nx > 0 {
		mx = dx / float64(nx)
	}
	if ny > 0 {
		my = dy / float64(ny)
	}
	return (mx + my) / 255
}
