package domain

import (
	"mime"
	"path/filepath"
	"strings"
)

// Format is the closed set of document formats the extractor understands.
// Anything that does not resolve to a structured format is FormatFallback.
type Format string

// Supported formats.
const (
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
	FormatEmail    Format = "email"
	FormatCSV      Format = "csv"
	FormatXLSX     Format = "xlsx"
	FormatPPTX     Format = "pptx"
	FormatImage    Format = "image"
	FormatFallback Format = "generic_fallback"
)

// Formats returns every format in dispatch order, fallback last.
func Formats() []Format {
	return []Format{
		FormatPDF, FormatDOCX, FormatEmail, FormatCSV,
		FormatXLSX, FormatPPTX, FormatImage, FormatFallback,
	}
}

// IsValid returns true if the format is one of the closed set.
func (f Format) IsValid() bool {
	switch f {
	case FormatPDF, FormatDOCX, FormatEmail, FormatCSV,
		FormatXLSX, FormatPPTX, FormatImage, FormatFallback:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f Format) String() string {
	return string(f)
}

var extensionFormats = map[string]Format{
	".pdf":  FormatPDF,
	".docx": FormatDOCX,
	".eml":  FormatEmail,
	".msg":  FormatEmail,
	".csv":  FormatCSV,
	".xlsx": FormatXLSX,
	".pptx": FormatPPTX,
	".png":  FormatImage,
	".jpg":  FormatImage,
	".jpeg": FormatImage,
	".gif":  FormatImage,
	".webp": FormatImage,
	".bmp":  FormatImage,
}

// mimeFormat maps a declared media type to a format.
func mimeFormat(mediaType string) Format {
	switch mediaType {
	case "application/pdf":
		return FormatPDF
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return FormatDOCX
	case "message/rfc822", "application/vnd.ms-outlook":
		return FormatEmail
	case "text/csv", "application/csv":
		return FormatCSV
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return FormatXLSX
	case "application/vnd.openxmlformats-officedocument.presentationml.presentation":
		return FormatPPTX
	}
	if strings.HasPrefix(mediaType, "image/") {
		return FormatImage
	}
	return FormatFallback
}

// DetectFormat resolves the format of a document. The file extension is
// the primary signal; the declared MIME type is consulted only when the
// extension is unknown.
func DetectFormat(filename, declaredMIME string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	if f, ok := extensionFormats[ext]; ok {
		return f
	}

	if declaredMIME == "" {
		return FormatFallback
	}
	mediaType, _, err := mime.ParseMediaType(declaredMIME)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(declaredMIME))
	}
	return mimeFormat(mediaType)
}

// ImageMIMEType returns the MIME type for an image filename, defaulting
// to image/jpeg.
func ImageMIMEType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	case ".emf":
		return "image/emf"
	case ".wmf":
		return "image/wmf"
	default:
		return "image/jpeg"
	}
}

// IsRasterImage reports whether filename names a bitmap image that an
// image describer can consume. Vector formats such as EMF are excluded.
func IsRasterImage(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp":
		return true
	default:
		return false
	}
}
