package canvas

import (
	"image"
	"image/color"
)

// IsAbsent reports whether img carries no raster at all. Typed nil pointers of
// the common concrete image types count as absent.
func IsAbsent(img image.Image) bool {
	switch v := img.(type) {
	case nil:
		return true
	case *image.RGBA:
		return v == nil
	case *image.NRGBA:
		return v == nil
	case *image.Gray:
		return v == nil
	case *image.Gray16:
		return v == nil
	case *image.Paletted:
		return v == nil
	case *image.YCbCr:
		return v == nil
	}
	return false
}

// IntensityPlane extracts the first channel of every pixel into a gray plane
// with the same bounds as img. For colour images the first channel is red,
// taken from the non-premultiplied colour; 16-bit values keep their high byte.
//
// A *image.Gray input is returned as-is and must be treated as read-only.
func IntensityPlane(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}

	bounds := img.Bounds()
	plane := image.NewGray(bounds)
	w, h := bounds.Dx(), bounds.Dy()

	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			srcRow := src.Pix[y*src.Stride : y*src.Stride+w*4]
			dstRow := plane.Pix[y*plane.Stride : y*plane.Stride+w]
			for x := range dstRow {
				dstRow[x] = srcRow[x*4]
			}
		}
	case *image.RGBA:
		for y := 0; y < h; y++ {
			srcRow := src.Pix[y*src.Stride : y*src.Stride+w*4]
			dstRow := plane.Pix[y*plane.Stride : y*plane.Stride+w]
			for x := range dstRow {
				if srcRow[x*4+3] == 0xff {
					dstRow[x] = srcRow[x*4]
					continue
				}
				c := src.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
				dstRow[x] = color.NRGBAModel.Convert(c).(color.NRGBA).R
			}
		}
	default:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				plane.SetGray(x, y, color.Gray{Y: c.R})
			}
		}
	}

	return plane
}
