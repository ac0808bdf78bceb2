package onething

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/onething-labs/onething-go/core"
)

// InputImageFromURL builds an input image reference from a URL.
func InputImageFromURL(url string) core.InputImage {
	return core.InputImage{URL: &url}
}

// InputImageFromBase64 builds an input image from already-encoded base64
// data. The value should carry a data URL prefix.
func InputImageFromBase64(b64 string) core.InputImage {
	return core.InputImage{B64JSON: &b64}
}

// InputImageFromFile reads an image file and encodes it as a base64 data
// URL. The MIME type is inferred from the filename, falling back to magic
// bytes.
func InputImageFromFile(path string) (core.InputImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.InputImage{}, fmt.Errorf("read image file: %w", err)
	}
	return inputImageFromBytes(data, detectImageMIME(path, data)), nil
}

// InputImageFromReader reads image data and encodes it as a base64 data
// URL with the given MIME type.
func InputImageFromReader(r io.Reader, mimeType string) (core.InputImage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.InputImage{}, fmt.Errorf("read image data: %w", err)
	}
	return inputImageFromBytes(data, mimeType), nil
}

func inputImageFromBytes(data []byte, mimeType string) core.InputImage {
	b64 := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
	return core.InputImage{B64JSON: &b64}
}

// InputVideoFromURL builds an input video reference from a URL.
func InputVideoFromURL(url string) core.InputVideo {
	return core.InputVideo{URL: &url}
}

// detectImageMIME detects the MIME type from the filename extension,
// falling back to magic bytes, then to PNG.
func detectImageMIME(filename string, data []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	}

	if len(data) >= 4 {
		// PNG: 89 50 4E 47
		if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
			return "image/png"
		}
		// JPEG: FF D8 FF
		if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
			return "image/jpeg"
		}
		// WebP: RIFF....WEBP
		if len(data) >= 12 && data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
			data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
			return "image/webp"
		}
	}

	return "image/png"
}

// FirstImage returns the first result of a successful image payload.
func FirstImage(payload *core.ImagePayload) (*core.ImageResult, error) {
	if payload == nil || payload.Result == nil || len(payload.Result.Data) == 0 {
		return nil, fmt.Errorf("no images in response")
	}
	return &payload.Result.Data[0], nil
}

// FirstVideo returns the first result of a successful video payload.
func FirstVideo(payload *core.VideoPayload) (*core.VideoResult, error) {
	if payload == nil || payload.Result == nil || len(payload.Result.Data) == 0 {
		return nil, fmt.Errorf("no videos in response")
	}
	return &payload.Result.Data[0], nil
}

// ImageURLs collects every URL-form result from an image payload.
func ImageURLs(payload *core.ImagePayload) []string {
	if payload == nil || payload.Result == nil {
		return nil
	}
	urls := make([]string, 0, len(payload.Result.Data))
	for _, img := range payload.Result.Data {
		if img.URL != nil {
			urls = append(urls, *img.URL)
		}
	}
	return urls
}

// VideoURLs collects every URL-form result from a video payload.
func VideoURLs(payload *core.VideoPayload) []string {
	if payload == nil || payload.Result == nil {
		return nil
	}
	urls := make([]string, 0, len(payload.Result.Data))
	for _, v := range payload.Result.Data {
		if v.URL != nil {
			urls = append(urls, *v.URL)
		}
	}
	return urls
}
