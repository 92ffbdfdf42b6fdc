package gemini

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// prepareImage converts whatever the user uploaded (JPEG, PNG, GIF, HEIC
// phone photos, single-page PDF) into PNG bytes the model accepts.
func prepareImage(data []byte, contentType string) ([]byte, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	if mimeType == "application/pdf" {
		return pdfToPNG(data)
	}
	if mimeType == "image/png" && !isHEIC(data) {
		return data, nil
	}
	return imageToPNG(data, mimeType)
}

// pdfToPNG renders the first page; receipts are single-page documents.
func pdfToPNG(data []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return encodePNG(img)
}

func imageToPNG(data []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	if isHEIC(data) || strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif") {
		img, err = heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}
	return encodePNG(img)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEIC sniffs the ftyp box brands HEIC/HEIF containers start with.
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}
