package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"gene/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	genomes     map[string]model.GenomeRecord
	history     map[string][]model.GenerationStats
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.genomes = make(map[string]model.GenomeRecord)
	s.history = make(map[string][]model.GenerationStats)
	return nil
}

func (s *MemoryStore) SaveGenome(_ context.Context, record model.GenomeRecord) error {
	if record.ID == "" {
		return errors.New("genome id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.genomes[record.ID] = Stamp(record).Clone()
	return nil
}

func (s *MemoryStore) GetGenome(_ context.Context, id string) (model.GenomeRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.genomes[id]
	if !ok {
		return model.GenomeRecord{}, false, nil
	}
	return record.Clone(), true, nil
}

func (s *MemoryStore) ListGenomes(_ context.Context, runID string) ([]model.GenomeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.GenomeRecord, 0)
	for _, record := range s.genomes {
		if record.RunID == runID {
			out = append(out, record.Clone())
		}
	}
	sortRecords(out)
	return out, nil
}

func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, history []model.GenerationStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.history[runID] = append([]model.GenerationStats(nil), history...)
	return nil
}

func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string) ([]model.GenerationStats, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]model.GenerationStats(nil), history...), true, nil
}

func sortRecords(records []model.GenomeRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Generation != records[j].Generation {
			return records[i].Generation < records[j].Generation
		}
		if records[i].Fitness != records[j].Fitness {
			return records[i].Fitness > records[j].Fitness
		}
		return records[i].ID < records[j].ID
	})
}
