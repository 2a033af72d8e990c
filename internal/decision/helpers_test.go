package decision

import (
	"issue-classifier/internal/domain/entity"
)

const side = 224

func uniformRaster(r, g, b uint8) *entity.Raster {
	img := entity.NewRaster(side, side)
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			img.Set(x, y, r, g, b)
		}
	}
	return img
}

// texturedRaster looks like a busy outdoor photo as far as the gate is concerned.
func texturedRaster() *entity.Raster {
	img := entity.NewRaster(side, side)
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			img.Set(x, y, uint8((x*7+y*13)%256), uint8((x*11+y*3)%256), uint8((x*5+y*17)%256))
		}
	}
	return img
}

func splitRaster(left, right uint8) *entity.Raster {
	img := entity.NewRaster(side, side)
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			v := left
			if x >= side/2 {
				v = right
			}
			img.Set(x, y, v, v, v)
		}
	}
	return img
}

// tintedCheckerboard has strong edges and distinct channel means but almost no spread per channel.
func tintedCheckerboard() *entity.Raster {
	img := entity.NewRaster(side, side)
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			d := 8
			if (x+y)%2 == 1 {
				d = -8
			}
			img.Set(x, y, uint8(200+d), uint8(50+d), uint8(120+d))
		}
	}
	return img
}

func taxonomyLabels() []string {
	entries := entity.TaxonomyEntries()
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.ClassName
	}
	return labels
}
