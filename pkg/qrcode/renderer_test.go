package qrcode_test

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhamtiwari158/securify/pkg/qrcode"
)

const otpauthURL = "otpauth://totp/Securify:alice@example.com?algorithm=SHA1&digits=6&issuer=Securify&period=30&secret=GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	t.Run("empty content", func(t *testing.T) {
		t.Parallel()

		for _, content := range []string{"", "   \t\n"} {
			img, err := qrcode.NewRenderer().Render(content)
			assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
			assert.Nil(t, img)
		}
	})

	t.Run("default size", func(t *testing.T) {
		t.Parallel()

		r := qrcode.NewRenderer()
		assert.Equal(t, qrcode.DefaultSize, r.Size())

		data, err := r.Render(otpauthURL)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, qrcode.DefaultSize, img.Bounds().Dx())
		assert.Equal(t, qrcode.DefaultSize, img.Bounds().Dy())
	})

	t.Run("custom size", func(t *testing.T) {
		t.Parallel()

		data, err := qrcode.NewRenderer(qrcode.WithSize(400)).Render(otpauthURL)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 400, img.Bounds().Dx())
	})

	t.Run("non-positive size ignored", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, qrcode.DefaultSize, qrcode.NewRenderer(qrcode.WithSize(-10)).Size())
		assert.Equal(t, qrcode.DefaultSize, qrcode.NewRenderer(qrcode.WithSize(0)).Size())
	})

	t.Run("content too long", func(t *testing.T) {
		t.Parallel()

		r := qrcode.NewRenderer(qrcode.WithRecoveryLevel(qrcode.Highest))
		img, err := r.Render(strings.Repeat("x", 4000))
		assert.ErrorIs(t, err, qrcode.ErrEncodingFailure)
		assert.Nil(t, img)
	})
}

func TestRenderer_RenderDataURL(t *testing.T) {
	t.Parallel()

	t.Run("decodes to png", func(t *testing.T) {
		t.Parallel()

		uri, err := qrcode.NewRenderer().RenderDataURL(otpauthURL)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(raw))
		require.NoError(t, err)
		assert.Equal(t, qrcode.DefaultSize, img.Bounds().Dx())
	})

	t.Run("propagates errors", func(t *testing.T) {
		t.Parallel()

		uri, err := qrcode.NewRenderer().RenderDataURL(" ")
		assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
		assert.Empty(t, uri)
	})
}
