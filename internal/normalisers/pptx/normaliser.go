// Package pptx extracts slide text from PowerPoint decks and inlines a
// description of every embedded picture.
package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ErrNoSlides is returned when the archive contains no slide parts.
var ErrNoSlides = errors.New("pptx: no slides found")

const slidePrefix = "ppt/slides/slide"

// Normaliser handles PPTX decks.
type Normaliser struct {
	describer driven.ImageDescriber
}

// New creates a PPTX normaliser. A nil describer skips embedded images.
func New(describer driven.ImageDescriber) *Normaliser {
	return &Normaliser{describer: describer}
}

// Format returns the format variant this normaliser decodes.
func (n *Normaliser) Format() domain.Format {
	return domain.FormatPPTX
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	}
}

// Normalise concatenates slide text in slide order under a "Slide N"
// header. Each embedded raster image is described and appended after its
// slide's text as "[Slide N, Image M]: <description>". Slides with neither
// text nor described images are omitted.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	archive, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip archive: %w", domain.ErrInvalidInput, err)
	}

	files := make(map[string]*zip.File, len(archive.File))
	for _, f := range archive.File {
		files[f.Name] = f
	}

	slides := slideNames(archive)
	if len(slides) == 0 {
		return nil, ErrNoSlides
	}

	var (
		parts []string
		title string
	)
	for i, name := range slides {
		number := i + 1

		content, err := readFile(files[name])
		if err != nil {
			return nil, err
		}

		slide, err := parseSlide(content)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", number, err)
		}
		if title == "" && len(slide.lines) > 0 {
			title = slide.lines[0]
		}

		descriptions := n.describeImages(ctx, files, name, slide.imageRefs, number)
		if len(slide.lines) == 0 && len(descriptions) == 0 {
			continue
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Slide %d", number)
		for _, line := range slide.lines {
			b.WriteString("\n")
			b.WriteString(line)
		}
		for _, image := range descriptions {
			fmt.Fprintf(&b, "\n[Slide %d, Image %d]: %s", number, image.position, image.text)
		}
		parts = append(parts, b.String())
	}

	if title == "" {
		title = raw.Stem()
	}

	return &driven.NormaliseResult{
		Text:  strings.Join(parts, "\n\n"),
		Title: title,
	}, nil
}

// imageDescription is the description of the picture at position (1-based)
// among the slide's pictures.
type imageDescription struct {
	position int
	text     string
}

// describeImages resolves the slide's picture references and describes each
// raster image. Failures are logged and the image is skipped; skipped images
// keep their position so later tags match the slide.
func (n *Normaliser) describeImages(ctx context.Context, files map[string]*zip.File, slideName string, refs []string, number int) []imageDescription {
	if len(refs) == 0 {
		return nil
	}
	if n.describer == nil {
		logger.Warn("pptx: slide %d has %d image(s) but no image describer is configured", number, len(refs))
		return nil
	}

	targets, err := imageTargets(files, slideName)
	if err != nil {
		logger.Warn("pptx: slide %d relationships unreadable: %v", number, err)
		return nil
	}

	var descriptions []imageDescription
	for i, ref := range refs {
		target, ok := targets[ref]
		if !ok {
			continue
		}
		if !domain.IsRasterImage(target) {
			logger.Debug("pptx: slide %d skipping non-raster media %s", number, target)
			continue
		}

		data, err := readFile(files[target])
		if err != nil {
			logger.Warn("pptx: slide %d image %s unreadable: %v", number, target, err)
			continue
		}

		description, err := n.describer.Describe(ctx, data, domain.ImageMIMEType(target))
		if err != nil {
			logger.Warn("pptx: slide %d image %s not described: %v", number, target, err)
			continue
		}
		description = strings.TrimSpace(description)
		if description == "" {
			logger.Debug("pptx: slide %d image %s has an empty description", number, target)
			continue
		}
		descriptions = append(descriptions, imageDescription{position: i + 1, text: description})
	}
	return descriptions
}

// slideNames returns slide part names sorted by slide number.
func slideNames(archive *zip.Reader) []string {
	type numbered struct {
		name string
		n    int
	}

	var slides []numbered
	for _, f := range archive.File {
		if !strings.HasPrefix(f.Name, slidePrefix) || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(f.Name, slidePrefix), ".xml"))
		if err != nil {
			continue
		}
		slides = append(slides, numbered{name: f.Name, n: n})
	}

	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	names := make([]string, len(slides))
	for i, s := range slides {
		names[i] = s.name
	}
	return names
}

type slideContent struct {
	lines     []string
	imageRefs []string
}

// parseSlide collects a:t text by paragraph and a:blip embed references in
// document order.
func parseSlide(content []byte) (*slideContent, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var (
		slide     slideContent
		paragraph strings.Builder
		inText    bool
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: malformed slide xml: %w", domain.ErrInvalidInput, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "br":
				paragraph.WriteString(" ")
			case "blip":
				for _, attr := range t.Attr {
					if attr.Name.Local == "embed" && attr.Value != "" {
						slide.imageRefs = append(slide.imageRefs, attr.Value)
					}
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if line := strings.TrimSpace(paragraph.String()); line != "" {
					slide.lines = append(slide.lines, line)
				}
				paragraph.Reset()
			}
		case xml.CharData:
			if inText {
				paragraph.Write(t)
			}
		}
	}

	return &slide, nil
}

type relationships struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// imageTargets maps relationship IDs to archive paths for a slide's images.
func imageTargets(files map[string]*zip.File, slideName string) (map[string]string, error) {
	dir, base := path.Split(slideName)
	relsName := dir + "_rels/" + base + ".rels"

	content, err := readFile(files[relsName])
	if err != nil {
		return nil, err
	}

	var rels relationships
	if err := xml.Unmarshal(content, &rels); err != nil {
		return nil, err
	}

	targets := make(map[string]string)
	for _, rel := range rels.Relationships {
		if !strings.HasSuffix(rel.Type, "/image") {
			continue
		}
		targets[rel.ID] = path.Clean(path.Join(dir, rel.Target))
	}
	return targets, nil
}

func readFile(f *zip.File) ([]byte, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: missing archive member", domain.ErrInvalidInput)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return content, nil
}
