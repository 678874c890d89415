// Package resource loads the images used as window icons.
package resource

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register gif decoder
	_ "image/jpeg" // register jpeg decoder
	_ "image/png"  // register png decoder
	"io"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/esimov/winloop/utils"
	_ "golang.org/x/image/bmp"  // register bmp decoder
	_ "golang.org/x/image/webp" // register webp decoder
)

// Default icon sizes, in pixels, of the Win32 large and small icons at 96 DPI.
const (
	LargeSize = 32
	SmallSize = 16
)

// ErrNotImage is returned when an icon source does not hold an image.
var ErrNotImage = errors.New("resource: not an image")

// Icon is a window icon prepared in the two sizes the shell asks for.
type Icon struct {
	// Large is shown in the task switcher.
	Large *image.NRGBA
	// Small is shown in the caption bar and the taskbar.
	Small *image.NRGBA
}

// NewIcon scales img to the default icon sizes.
func NewIcon(img image.Image) *Icon {
	return NewIconSized(img, LargeSize, SmallSize)
}

// NewIconSized scales img to the given square sizes. Non square images are
// cropped around their center.
func NewIconSized(img image.Image, large, small int) *Icon {
	return &Icon{
		Large: scale(img, large),
		Small: scale(img, small),
	}
}

func scale(img image.Image, size int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == size && b.Dy() == size {
		return toNRGBA(img)
	}
	return imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)
}

// Decode reads an icon from r.
func Decode(r io.Reader) (*Icon, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("resource: could not decode the icon: %w", err)
	}
	return NewIcon(img), nil
}

// Open loads an icon from a file path or an http(s) URL.
func Open(ctx context.Context, src string) (*Icon, error) {
	if utils.IsValidUrl(src) {
		f, err := utils.DownloadImage(ctx, src, "")
		if err != nil {
			return nil, fmt.Errorf("resource: %w", err)
		}
		defer os.Remove(f.Name())
		defer f.Close()
		return Decode(f)
	}

	ctype, err := utils.DetectContentType(src)
	if err != nil {
		return nil, fmt.Errorf("resource: could not open the icon file: %w", err)
	}
	if !strings.Contains(ctype, "image") {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotImage, src, ctype)
	}

	img, err := imaging.Open(src)
	if err != nil {
		return nil, fmt.Errorf("resource: could not decode the icon file: %w", err)
	}
	return NewIcon(img), nil
}
