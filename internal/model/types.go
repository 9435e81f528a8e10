package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// GenomeRecord is an archived genome together with everything needed to
// decode it again.
type GenomeRecord struct {
	VersionedRecord
	ID              string    `json:"id"`
	RunID           string    `json:"run_id"`
	Generation      int       `json:"generation"`
	Scheme          string    `json:"scheme"`
	D               int       `json:"d"`
	Distance        string    `json:"distance"`
	Architecture    string    `json:"architecture"`
	LayerDimensions []int     `json:"layer_dimensions"`
	Fitness         float64   `json:"fitness"`
	CreatedAt       time.Time `json:"created_at"`
	// Genome is stored separately through the vector codec.
	Genome []float64 `json:"-"`
}

// Clone returns a deep copy so stores never share slices with callers.
func (r GenomeRecord) Clone() GenomeRecord {
	out := r
	out.LayerDimensions = append([]int(nil), r.LayerDimensions...)
	out.Genome = append([]float64(nil), r.Genome...)
	return out
}

// GenerationStats summarises one generation's fitness values.
type GenerationStats struct {
	Generation int     `json:"generation"`
	Best       float64 `json:"best"`
	Mean       float64 `json:"mean"`
	Variance   float64 `json:"variance"`
}
