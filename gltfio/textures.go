package gltfio

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	raybox "github.com/kesh3d/raybox"
	"github.com/kesh3d/raybox/ktx2"
	"github.com/kesh3d/raybox/rlog"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

const extTextureBasisu = "KHR_texture_basisu"

// loadTextures decodes every glTF image referenced by a texture into
// a core Texture. imageBytes slices bufferView-embedded images out of
// the document's buffers and decodes data-URI images with
// decodeDataURI; KTX2/Basis-universal
// images that this package cannot transcode fall back to a flat gray
// texture, the same "unsupported format survives as a visible but
// inert texture" rule spec.md §7 gives invalid textures generally.
func (l *Loader) loadTextures() error {
	for i, tex := range l.doc.Textures {
		if tex.Source == nil {
			continue
		}
		img := l.doc.Images[*tex.Source]

		data, err := l.imageBytes(img)
		if err != nil {
			rlog.L.Warn("gltf texture unreadable, falling back to gray", zap.Int("texture", i), zap.Error(err))
			l.texByIx[i] = grayTexture()
			continue
		}

		if basisuSource(tex) {
			l.texByIx[i] = decodeKTX2(data)
			continue
		}

		decoded, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			rlog.L.Warn("gltf image decode failed, falling back to gray", zap.Int("texture", i), zap.Error(err))
			l.texByIx[i] = grayTexture()
			continue
		}
		l.texByIx[i] = raybox.NewTexture(decoded, raybox.ColorSpaceSRGB)
		l.progress(i+1, len(l.doc.Textures), "textures")
	}
	return nil
}

func basisuSource(tex *gltf.Texture) bool {
	_, ok := tex.Extensions[extTextureBasisu]
	return ok
}

func (l *Loader) imageBytes(img *gltf.Image) ([]byte, error) {
	if img.BufferView != nil {
		bv := l.doc.BufferViews[*img.BufferView]
		buf := l.doc.Buffers[bv.Buffer]
		return buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], nil
	}
	if data, ok := decodeDataURI(img.URI); ok {
		return data, nil
	}
	return nil, fmt.Errorf("image has neither bufferView nor an embedded data URI (external file references are not fetched)")
}

// decodeDataURI decodes a base64 "data:<mime>;base64,<data>" URI, the
// embedding form glTF images commonly use alongside bufferView refs.
func decodeDataURI(uri string) ([]byte, bool) {
	const marker = ";base64,"
	if !strings.HasPrefix(uri, "data:") {
		return nil, false
	}
	idx := strings.Index(uri, marker)
	if idx < 0 {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(uri[idx+len(marker):])
	if err != nil {
		return nil, false
	}
	return data, true
}

// decodeKTX2 reads the container header to confirm the stream really
// is KTX2, then falls back to gray: this package's ktx2 reader parses
// the header/level-index/DFD structure but carries no Basis
// Universal or block-compression transcoder, so there is no path
// from a compressed level's bytes to RGBA pixels here.
func decodeKTX2(data []byte) *raybox.Texture {
	if _, err := ktx2.NewKTX2Reader(data); err != nil {
		rlog.L.Warn("ktx2 header invalid, falling back to gray", zap.Error(err))
	} else {
		rlog.L.Warn("ktx2/basisu texture has no transcoder available, falling back to gray")
	}
	return grayTexture()
}

func grayTexture() *raybox.Texture {
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	img.SetGray(0, 0, color.Gray{Y: 128})
	return raybox.NewTexture(img, raybox.ColorSpaceSRGB)
}
