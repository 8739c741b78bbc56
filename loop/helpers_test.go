package loop

import "image"

func newTestFrame() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, 4, 4))
}
