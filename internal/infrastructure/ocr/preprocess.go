package ocr

import (
	"image"
	"image/color"
)

// BaseThreshold is the binarisation cutoff used when Otsu's method finds no
// separation between classes (a single-intensity image).
const BaseThreshold = 150

// Preprocess converts img to grayscale and binarises it with an Otsu threshold.
// The result is always single-channel with pixel values 0 or 255.
func Preprocess(img image.Image) *image.Gray {
	gray := ToGray(img)
	threshold := OtsuThreshold(gray)
	Binarize(gray, threshold)
	return gray
}

// ToGray copies img into a new *image.Gray anchored at the origin.
func ToGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			gray.SetGray(x-bounds.Min.X, y-bounds.Min.Y, c)
		}
	}
	return gray
}

// OtsuThreshold picks the intensity maximising between-class variance.
func OtsuThreshold(gray *image.Gray) uint8 {
	var hist [256]int
	bounds := gray.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := gray.Pix[(y-bounds.Min.Y)*gray.Stride:]
		for x := 0; x < bounds.Dx(); x++ {
			hist[row[x]]++
		}
	}

	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return BaseThreshold
	}

	var sumAll float64
	for i, n := range hist {
		sumAll += float64(i * n)
	}

	var (
		sumBackground float64
		weightBack    int
		bestVariance  float64
		best          = -1
	)
	for t := 0; t < 256; t++ {
		weightBack += hist[t]
		if weightBack == 0 {
			continue
		}
		weightFore := total - weightBack
		if weightFore == 0 {
			break
		}
		sumBackground += float64(t * hist[t])
		meanBack := sumBackground / float64(weightBack)
		meanFore := (sumAll - sumBackground) / float64(weightFore)
		diff := meanBack - meanFore
		variance := float64(weightBack) * float64(weightFore) * diff * diff
		if variance > bestVariance {
			bestVariance = variance
			best = t
		}
	}
	if best < 0 {
		return BaseThreshold
	}
	return uint8(best)
}

// Binarize sets pixels strictly above threshold to 255 and the rest to 0.
func Binarize(gray *image.Gray, threshold uint8) {
	for i, v := range gray.Pix {
		if v > threshold {
			gray.Pix[i] = 255
		} else {
			gray.Pix[i] = 0
		}
	}
}
