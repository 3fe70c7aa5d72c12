package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Meta     RunMetadata  `json:"meta"`
	Contacts []ContactRow `json:"contacts"`
}

// ExportJSON writes a stored run as a single JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	rows, err := s.LoadContacts(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Meta: *meta, Contacts: rows})
}
