package extract

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"docstore/internal/model"
)

// extractPDF pulls page count and document-information fields out of a PDF.
func extractPDF(path string) (model.Metadata, error) {
	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return nil, fmt.Errorf("validate pdf: %w", err)
	}

	return model.Metadata{
		"pages":         pdfCtx.PageCount,
		"title":         orUnknown(pdfCtx.Title),
		"author":        orUnknown(pdfCtx.Author),
		"creator":       orUnknown(pdfCtx.Creator),
		"creation_date": orUnknown(pdfCtx.CreationDate),
	}, nil
}
