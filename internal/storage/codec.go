package storage

import (
	"encoding/json"
	"errors"

	"gene/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// EncodeGenomeRecord serialises the record metadata. The genome vector
// itself goes through EncodeVector.
func EncodeGenomeRecord(r model.GenomeRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeGenomeRecord(data []byte) (model.GenomeRecord, error) {
	var record model.GenomeRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.GenomeRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.GenomeRecord{}, err
	}
	return record, nil
}

func EncodeFitnessHistory(history []model.GenerationStats) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeFitnessHistory(data []byte) ([]model.GenerationStats, error) {
	var history []model.GenerationStats
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// Stamp fills in missing versions so callers can save plain records.
func Stamp(r model.GenomeRecord) model.GenomeRecord {
	if r.SchemaVersion == 0 {
		r.SchemaVersion = CurrentSchemaVersion
	}
	if r.CodecVersion == 0 {
		r.CodecVersion = CurrentCodecVersion
	}
	return r
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
