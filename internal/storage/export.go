package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	RunMetadata
	Times  []float64                `json:"times"`
	States []map[string][][]float64 `json:"states"`
}

// ExportJSON writes a run with all of its frames as one JSON document.
// Each state maps field names to grids given as rows.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	seq, times, err := s.LoadSequence(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		RunMetadata: *meta,
		Times:       times,
		States:      make([]map[string][][]float64, len(seq)),
	}
	for i, st := range seq {
		m := make(map[string][][]float64, st.Len())
		for j := 0; j < st.Len(); j++ {
			g := st.Field(j)
			rows := make([][]float64, g.Rows)
			for r := range rows {
				rows[r] = g.Data[r*g.Cols : (r+1)*g.Cols]
			}
			m[st.Name(j)] = rows
		}
		data.States[i] = m
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
