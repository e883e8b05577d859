package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"

	"docstore/internal/model"
)

// orUnknown is the placeholder both extractors report for document
// properties the file does not carry.
func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// coreProperties mirrors the subset of docProps/core.xml we report. Element
// matching is by local name, so the dc/dcterms namespaces need no handling.
type coreProperties struct {
	Title   string `xml:"title"`
	Creator string `xml:"creator"`
	Created string `xml:"created"`
}

// extractDocx reads an OOXML word-processing package and reports structural
// counts plus core document properties.
func extractDocx(path string) (model.Metadata, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx package: %w", err)
	}
	defer zr.Close()

	var props coreProperties
	var paragraphs, tables int
	var sawBody bool

	for _, f := range zr.File {
		switch f.Name {
		case "docProps/core.xml":
			if err := readCoreProperties(f, &props); err != nil {
				return nil, err
			}
		case "word/document.xml":
			sawBody = true
			if paragraphs, tables, err = countBodyElements(f); err != nil {
				return nil, err
			}
		}
	}
	if !sawBody {
		return nil, fmt.Errorf("docx package has no word/document.xml")
	}

	return model.Metadata{
		"paragraphs":    paragraphs,
		"tables":        tables,
		"title":         orUnknown(props.Title),
		"author":        orUnknown(props.Creator),
		"creation_date": orUnknown(props.Created),
	}, nil
}

func readCoreProperties(f *zip.File, props *coreProperties) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open core properties: %w", err)
	}
	defer rc.Close()
	if err := xml.NewDecoder(rc).Decode(props); err != nil {
		return fmt.Errorf("decode core properties: %w", err)
	}
	return nil
}

// countBodyElements streams word/document.xml and counts top-level-ish
// paragraph and table elements without building a DOM.
func countBodyElements(f *zip.File) (paragraphs, tables int, err error) {
	rc, err := f.Open()
	if err != nil {
		return 0, 0, fmt.Errorf("open document body: %w", err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return paragraphs, tables, nil
		}
		if err != nil {
			return 0, 0, fmt.Errorf("decode document body: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "p":
			paragraphs++
		case "tbl":
			tables++
		}
	}
}
