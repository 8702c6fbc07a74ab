package backup

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/workguide/guide-server/internal/service"
)

// ReadYAML decodes a hand-written dataset:
//
//	tags:
//	  - name: okno
//	    kind: product
//	guides:
//	  - slug: install-window-handle
//	    title: Install Window Handle
//	    tools: [screwdriver]
//	    steps:
//	      - {number: 1, text: Remove the cover}
//
// Unknown keys are rejected so typos do not silently drop data.
func ReadYAML(r io.Reader) (*service.ImportDataset, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var ds service.ImportDataset
	if err := dec.Decode(&ds); err != nil {
		if errors.Is(err, io.EOF) {
			return &ds, nil
		}
		return nil, fmt.Errorf("decode yaml dataset: %w", err)
	}
	return &ds, nil
}
