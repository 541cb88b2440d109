// Package qrcode renders otpauth provisioning URIs as PNG QR codes, either as
// raw bytes or as a data URI that can be dropped into an <img> tag.
//
// It wraps github.com/skip2/go-qrcode with fixed defaults for enrollment
// images: 256px and medium error correction.
//
// # Usage
//
//	r := qrcode.NewRenderer()
//	png, err := r.Render(secret.OTPAuthURL)
//	uri, err := r.RenderDataURL(secret.OTPAuthURL)
//
// # Errors
//
//   - ErrEmptyContent: the content was empty or whitespace.
//   - ErrEncodingFailure: the content could not be encoded, usually because
//     it does not fit in a QR symbol at the configured recovery level.
package qrcode
