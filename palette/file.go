package palette

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxImageColors bounds how many distinct colors Load accepts from an image.
const MaxImageColors = 4096

// Swatch renders one size×size square per color. When rows has more than
// one entry every set gets its own row, padded with the background.
func Swatch(size int, bg color.Color, rows ...Set) image.Image {
	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}

	// one pixel per color, scaled up afterwards
	small := image.NewRGBA(image.Rect(0, 0, cols, len(rows)))
	draw.Draw(small, small.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	for y, row := range rows {
		for x, c := range row {
			small.Set(x, y, c)
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, cols*size, len(rows)*size))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), small, small.Bounds(), draw.Src, nil)
	return dst
}

// Encode writes img in the format named by ext: png, gif, bmp or tiff.
func Encode(w io.Writer, img image.Image, ext string) error {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		enc := png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       pngPool,
		}
		return enc.Encode(w, img)
	case "gif":
		// exact colors instead of the encoder's dithered Plan9 default
		pal, err := FromImage(img, 256)
		if err != nil {
			return fmt.Errorf("could not fit image into a GIF palette: %w", err)
		}
		if len(pal) == 0 {
			pal = Set{{}}
		}
		p := image.NewPaletted(img.Bounds(), pal.Palette())
		draw.Draw(p, p.Bounds(), img, img.Bounds().Min, draw.Src)
		return gif.Encode(w, p, nil)
	case "bmp":
		return bmp.Encode(w, img)
	case "tif", "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unsupported image format: %q", ext)
	}
}

// Save writes a file through a temporary sibling that is renamed over name
// only once write succeeded, so readers never see a partial file.
func Save(name string, write func(io.Writer) error) (err error) {
	dir, base := filepath.Split(name)
	if dir == "" {
		dir = "."
	}

	outFile, err := os.CreateTemp(dir, "."+base+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary destination for %q: %w", name, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Sync(); defErr != nil && err == nil {
			err = fmt.Errorf("could not flush temporary destination %q: %w", outFile.Name(), defErr)
		}
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination %q: %w", outFile.Name(), defErr)
		}

		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), name); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", name, defErr)
			}
		}
		if err != nil {
			if defErr := os.Remove(outFile.Name()); defErr != nil {
				slog.Error("could not remove temporary file", "name", outFile.Name(), "error", defErr)
			}
		}
	}()

	if err = write(outFile); err != nil {
		return fmt.Errorf("could not write %q: %w", name, err)
	}

	canRename = true
	return nil
}

// Load reads a palette from a RIFF PAL file (.pal), a hex list (.hex or
// .txt) or any image in a registered format. PAL files with several
// palettes are concatenated.
func Load(name string) (Set, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open palette %q: %w", name, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("could not close palette file", "name", name, "error", closeErr)
		}
	}()

	switch strings.ToLower(filepath.Ext(name)) {
	case ".pal":
		pals, err := ReadRIFF(f)
		if err != nil {
			return nil, fmt.Errorf("could not load palettes from %q: %w", name, err)
		}
		var s Set
		for _, pal := range pals {
			s = append(s, pal...)
		}
		return s, nil
	case ".hex", ".txt":
		s, err := ReadHex(f)
		if err != nil {
			return nil, fmt.Errorf("could not load colors from %q: %w", name, err)
		}
		return s, nil
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode image %q: %w", name, err)
	}
	s, err := FromImage(img, MaxImageColors)
	if err != nil {
		return nil, fmt.Errorf("could not read %s colors from %q: %w", format, name, err)
	}
	return s, nil
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
