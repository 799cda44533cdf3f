package normalisers

import (
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/normalisers/csv"
	"github.com/custodia-labs/docqa-cli/internal/normalisers/docx"
	"github.com/custodia-labs/docqa-cli/internal/normalisers/eml"
	"github.com/custodia-labs/docqa-cli/internal/normalisers/image"
	"github.com/custodia-labs/docqa-cli/internal/normalisers/pdf"
	"github.com/custodia-labs/docqa-cli/internal/normalisers/plaintext"
	"github.com/custodia-labs/docqa-cli/internal/normalisers/pptx"
	"github.com/custodia-labs/docqa-cli/internal/normalisers/xlsx"
)

// RegisterDefaults registers one normaliser per format variant.
// describer may be nil, in which case images inside decks are skipped and
// standalone images fail extraction.
func RegisterDefaults(registry *Registry, describer driven.ImageDescriber) {
	registry.Register(pdf.New())
	registry.Register(docx.New())
	registry.Register(eml.New())
	registry.Register(csv.New())
	registry.Register(xlsx.New())
	registry.Register(pptx.New(describer))
	registry.Register(image.New(describer))
	registry.Register(plaintext.New())
}

// NewDefaultRegistry returns a registry with every default normaliser.
func NewDefaultRegistry(describer driven.ImageDescriber) *Registry {
	registry := NewRegistry()
	RegisterDefaults(registry, describer)
	return registry
}
