package convert

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mauserzjeh/dxt"
	"github.com/pierrec/lz4/v4"
	_ "golang.org/x/image/webp"

	"portalscene/internal/utils"
)

var (
	ErrInvalidMagic = errors.New("invalid texture magic")
	ErrInvalidSize  = errors.New("invalid texture size")
)

const (
	texMagic     = "TEXV0005"
	texInfoMagic = "TEXI0001"
)

// Pixel formats stored in the texture header.
const (
	FormatRGBA8888 uint32 = 0
	FormatDXT5     uint32 = 4
	FormatDXT3     uint32 = 6
	FormatDXT1     uint32 = 7
	FormatRG88     uint32 = 8
	FormatR8       uint32 = 9
)

// maxMipBytes caps a single mip payload at 256 MiB.
const maxMipBytes = 256 << 20

// maxMipSide is the largest mip width or height accepted.
const maxMipSide = 16384

type texReader struct {
	r   io.Reader
	err error
}

func (t *texReader) u32() uint32 {
	var v uint32
	if t.err == nil {
		t.err = binary.Read(t.r, binary.LittleEndian, &v)
	}
	return v
}

// tag reads an 8-byte tag followed by its NUL terminator.
func (t *texReader) tag() string {
	b := make([]byte, 9)
	if t.err == nil {
		_, t.err = io.ReadFull(t.r, b)
	}
	return string(bytes.Trim(b, "\x00"))
}

func (t *texReader) bytes(n uint32) []byte {
	if t.err != nil {
		return nil
	}
	if n > maxMipBytes {
		t.err = fmt.Errorf("payload of %d bytes exceeds limit", n)
		return nil
	}
	b := make([]byte, n)
	_, t.err = io.ReadFull(t.r, b)
	return b
}

// TexHeader describes a packed texture.
type TexHeader struct {
	Format        uint32
	TextureWidth  uint32
	TextureHeight uint32
	ImageWidth    uint32
	ImageHeight   uint32
	Container     string
	ImageCount    uint32
}

// DecodeTex decodes the first mip of the first image of a packed texture.
func DecodeTex(r io.Reader) (image.Image, TexHeader, error) {
	t := &texReader{r: r}
	var h TexHeader

	magic := t.tag()
	info := t.tag()
	if t.err != nil {
		return nil, h, t.err
	}
	if magic != texMagic || info != texInfoMagic {
		return nil, h, fmt.Errorf("%w: %q/%q", ErrInvalidMagic, magic, info)
	}

	h.Format = t.u32()
	t.u32() // flags
	h.TextureWidth = t.u32()
	h.TextureHeight = t.u32()
	h.ImageWidth = t.u32()
	h.ImageHeight = t.u32()
	t.u32()

	h.Container = t.tag()
	h.ImageCount = t.u32()
	switch h.Container {
	case "TEXB0003":
		t.u32()
	case "TEXB0004":
		t.u32()
		t.u32()
	}
	if t.err != nil {
		return nil, h, t.err
	}
	utils.Debug("    Format: %d, Target Size: %dx%d, Container: %s", h.Format, h.ImageWidth, h.ImageHeight, h.Container)

	if h.ImageCount == 0 {
		return nil, h, errors.New("no image found in texture")
	}

	mipmapCount := t.u32()
	if mipmapCount == 0 && t.err == nil {
		return nil, h, errors.New("no mipmap found in texture")
	}

	mW := t.u32()
	mH := t.u32()
	var isLZ4 bool
	var decompressedSize uint32
	if h.Container != "TEXB0001" {
		isLZ4 = t.u32() == 1
		decompressedSize = t.u32()
	}
	data := t.bytes(t.u32())
	if t.err != nil {
		return nil, h, t.err
	}
	if mW == 0 || mH == 0 || mW > maxMipSide || mH > maxMipSide {
		return nil, h, fmt.Errorf("%w: mip %dx%d", ErrInvalidSize, mW, mH)
	}

	if isLZ4 {
		if decompressedSize > maxMipBytes {
			return nil, h, fmt.Errorf("decompressed size %d exceeds limit", decompressedSize)
		}
		utils.Debug("    Decompressing LZ4: %d -> %d", len(data), decompressedSize)
		out := make([]byte, decompressedSize)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, h, fmt.Errorf("lz4: %w", err)
		}
		data = out[:n]
	}

	pix, err := decodePixels(h.Format, data, mW, mH)
	if err != nil {
		return nil, h, err
	}
	if uint64(len(pix)) != uint64(mW)*uint64(mH)*4 {
		return nil, h, fmt.Errorf("%w: %d bytes decoded for %dx%d", ErrInvalidSize, len(pix), mW, mH)
	}

	img := &image.RGBA{
		Pix:    pix,
		Stride: int(mW * 4),
		Rect:   image.Rect(0, 0, int(mW), int(mH)),
	}
	w, hh := int(h.ImageWidth), int(h.ImageHeight)
	if w <= 0 || w > int(mW) {
		w = int(mW)
	}
	if hh <= 0 || hh > int(mH) {
		hh = int(mH)
	}
	return img.SubImage(image.Rect(0, 0, w, hh)), h, nil
}

func decodePixels(format uint32, data []byte, w, h uint32) ([]byte, error) {
	size := uint64(len(data))
	blocks := uint64((w+3)/4) * uint64((h+3)/4)
	expectedRGBA := uint64(w) * uint64(h) * 4

	switch {
	case size == expectedRGBA:
		utils.Debug("    Type: RGBA")
		return data, nil
	case size == blocks*16 || (format == FormatDXT5 && size >= blocks*16):
		utils.Debug("    Type: DXT5")
		return dxt.DecodeDXT5(data, uint(w), uint(h))
	case size == blocks*8 || (format == FormatDXT1 && size >= blocks*8):
		utils.Debug("    Type: DXT1")
		return dxt.DecodeDXT1(data, uint(w), uint(h))
	case format == FormatR8 && size == expectedRGBA/4:
		utils.Debug("    Type: R8")
		pix := make([]byte, expectedRGBA)
		for k, v := range data {
			pix[k*4], pix[k*4+1], pix[k*4+2], pix[k*4+3] = v, v, v, 255
		}
		return pix, nil
	case format == FormatRG88 && size == expectedRGBA/2:
		utils.Debug("    Type: RG88")
		pix := make([]byte, expectedRGBA)
		for k := 0; k < int(w*h); k++ {
			l, a := data[k*2], data[k*2+1]
			pix[k*4], pix[k*4+1], pix[k*4+2], pix[k*4+3] = l, l, l, a
		}
		return pix, nil
	}
	return nil, fmt.Errorf("unsupported format %d with size %d", format, size)
}

// DecodeImage decodes a packed .tex or any registered image format.
func DecodeImage(r io.Reader, name string) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(name), ".tex") {
		img, _, err := DecodeTex(r)
		return img, err
	}
	img, _, err := image.Decode(r)
	return img, err
}

// LoadImageFile opens and decodes path with DecodeImage.
func LoadImageFile(path string) (image.Image, error) {
	utils.Debug("Decoding texture: %s", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := DecodeImage(f, path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// ConvertToPNG decodes src and writes it to dst as PNG.
func ConvertToPNG(src, dst string) error {
	img, err := LoadImageFile(src)
	if err != nil {
		return err
	}

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(dst)
		return fmt.Errorf("encode %s: %w", dst, err)
	}
	return f.Close()
}

// PNGPath maps a texture path to its PNG output location.
func PNGPath(path, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".png"
	if outDir == "" {
		return filepath.Join(filepath.Dir(path), base)
	}
	return filepath.Join(outDir, base)
}

// BulkConvertTextures converts every .tex under root, returning how many
// succeeded. Failures are logged and joined into the returned error.
func BulkConvertTextures(ctx context.Context, root, outDir string) (int, error) {
	utils.Info("Starting bulk texture conversion in %s", root)
	var converted atomic.Int32
	var wg sync.WaitGroup

	// Limit concurrency to avoid RAM spikes
	const maxConcurrency = 10
	sem := make(chan struct{}, maxConcurrency)

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return 0, err
		}
	}

	var errMu sync.Mutex
	var errs []error

	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tex") {
			return nil
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(p string) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := ConvertToPNG(p, PNGPath(p, outDir)); err != nil {
				utils.Error("Failed to convert %s: %v", p, err)
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
				return
			}
			converted.Add(1)
		}(path)
		return nil
	})

	wg.Wait()
	if walkErr != nil {
		errs = append(errs, walkErr)
	}
	utils.Info("Bulk conversion finished. Processed %d textures.", converted.Load())
	return int(converted.Load()), errors.Join(errs...)
}
