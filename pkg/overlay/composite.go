package overlay

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Composite scales img to rect and draws it onto dst, a continuous 8-bit
// BGR frame. Four-channel images are alpha blended, three-channel images
// replace the pixels, single-channel images are drawn as gray.
func Composite(dst *gocv.Mat, img gocv.Mat, rect image.Rectangle) error {
	bounds := image.Rect(0, 0, dst.Cols(), dst.Rows())
	if rect.Empty() || !rect.In(bounds) {
		return fmt.Errorf("overlay region %v outside frame %v", rect, bounds)
	}
	if dst.Type() != gocv.MatTypeCV8UC3 || !dst.IsContinuous() {
		return fmt.Errorf("overlay target must be continuous 8-bit BGR")
	}
	if img.Empty() {
		return fmt.Errorf("overlay image is empty")
	}

	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.Resize(img, &scaled, rect.Size(), 0, 0, gocv.InterpolationLinear)

	src := scaled
	if scaled.Channels() == 1 {
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(scaled, &bgr, gocv.ColorGrayToBGR)
		src = bgr
	}

	dstPix, err := dst.DataPtrUint8()
	if err != nil {
		return fmt.Errorf("frame data: %w", err)
	}
	srcPix, err := src.DataPtrUint8()
	if err != nil {
		return fmt.Errorf("emoticon data: %w", err)
	}

	p := plane{pix: dstPix, stride: dst.Cols() * 3}
	switch src.Channels() {
	case 4:
		p.blend(rect.Min, srcPix, rect.Dx(), rect.Dy())
	case 3:
		p.copy(rect.Min, srcPix, rect.Dx(), rect.Dy())
	default:
		return fmt.Errorf("overlay image has %d channels", src.Channels())
	}
	return nil
}

// plane is a packed BGR pixel buffer.
type plane struct {
	pix    []byte
	stride int
}

// blend draws a packed BGRA image of w x h at pt using its alpha channel.
func (p plane) blend(pt image.Point, src []byte, w, h int) {
	for y := 0; y < h; y++ {
		row := (pt.Y+y)*p.stride + pt.X*3
		for x := 0; x < w; x++ {
			s := src[(y*w+x)*4:]
			d := p.pix[row+x*3:]
			a := uint32(s[3])
			if a == 0 {
				continue
			}
			for c := 0; c < 3; c++ {
				d[c] = uint8((uint32(s[c])*a + uint32(d[c])*(255-a) + 127) / 255)
			}
		}
	}
}

// copy draws a packed BGR image of w x h at pt.
func (p plane) copy(pt image.Point, src []byte, w, h int) {
	for y := 0; y < h; y++ {
		row := (pt.Y+y)*p.stride + pt.X*3
		copy(p.pix[row:row+w*3], src[y*w*3:(y+1)*w*3])
	}
}
