package viewer

import (
	"image"

	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/cascbox/cascview/pkg/formats"
)

// resolveTextures fetches and decodes every referenced texture
// concurrently. Per-slot failures are absorbed: the slot keeps a nil
// image and falls back to the default material. GPU upload happens
// later, on the renderer's thread.
func (p *Previewer) resolveTextures(gen uint64, refs []TextureRef) []ResolvedTexture {
	resolved := make([]ResolvedTexture, len(refs))

	g := new(errgroup.Group)
	g.SetLimit(p.textureWorkers)

	for i, ref := range refs {
		resolved[i].Ref = ref
		if ref.Filename == "" {
			continue
		}

		g.Go(func() error {
			if p.stale(gen) {
				return nil
			}

			data, err := p.store.ReadByName(ref.Filename)
			if err != nil {
				p.log.Debug("texture fetch failed, using default material",
					zap.String("texture", ref.Filename), zap.Error(err))
				return nil
			}

			img, err := formats.DecodeBLP(data)
			if err != nil {
				p.log.Debug("texture decode failed, using default material",
					zap.String("texture", ref.Filename), zap.Error(err))
				return nil
			}

			resolved[i].Image = capTextureSize(img, p.maxTextureSize)
			return nil
		})
	}

	// Workers never return errors; Wait only synchronizes the fan-out.
	_ = g.Wait()

	return resolved
}

// capTextureSize downscales oversized images so preview uploads stay
// within the configured budget. maxSize <= 0 disables the cap.
func capTextureSize(img *image.RGBA, maxSize int) *image.RGBA {
	if maxSize <= 0 {
		return img
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSize && h <= maxSize {
		return img
	}

	scale := float64(maxSize) / float64(w)
	if h > w {
		scale = float64(maxSize) / float64(h)
	}
	dw, dh := int(float64(w)*scale), int(float64(h)*scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
