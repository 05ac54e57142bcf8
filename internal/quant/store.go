package quant

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wonny/tradewind/internal/contracts"
	"github.com/wonny/tradewind/pkg/logger"
)

const modelFileSuffix = "_quant_model.json"

// TrainedModel is a persisted, immutable quantitative model artifact:
// the fitted stacking regressor plus its training metadata. Retraining
// supersedes the artifact on disk; it never mutates a loaded one.
type TrainedModel struct {
	Meta    contracts.ModelMeta    `json:"meta"`
	Metrics contracts.TrainMetrics `json:"metrics"`
	Model   *StackingModel         `json:"model"`
}

// Store persists one model artifact per instrument id under a single
// directory, keyed by the {id}_quant_model.json filename pattern.
// ⭐ SSOT: 모델 아티팩트 저장/로드는 여기서만
type Store struct {
	dir    string
	logger *logger.Logger
}

// NewStore creates a model store rooted at dir
func NewStore(dir string, log *logger.Logger) *Store {
	return &Store{dir: dir, logger: log}
}

// Path returns the artifact path for an instrument id
func (s *Store) Path(instrumentID string) string {
	return filepath.Join(s.dir, instrumentID+modelFileSuffix)
}

// Exists reports whether a persisted model exists for the instrument.
// Existence doubles as the cache-hit test.
func (s *Store) Exists(instrumentID string) bool {
	_, err := os.Stat(s.Path(instrumentID))
	return err == nil
}

// Load reads a persisted model artifact
func (s *Store) Load(instrumentID string) (*TrainedModel, error) {
	data, err := os.ReadFile(s.Path(instrumentID))
	if err != nil {
		return nil, fmt.Errorf("load model for %s: %w", instrumentID, err)
	}

	var m TrainedModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model for %s: %w", instrumentID, err)
	}
	return &m, nil
}

// Save writes the artifact with write-to-temp-then-rename so a stopped
// process never leaves a half-written model behind.
func (s *Store) Save(m *TrainedModel) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode model for %s: %w", m.Meta.InstrumentID, err)
	}

	final := s.Path(m.Meta.InstrumentID)
	tmp, err := os.CreateTemp(s.dir, m.Meta.InstrumentID+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp model file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp model file: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename model file: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"instrument": m.Meta.InstrumentID,
		"path":       final,
	}).Info("Model saved")
	return nil
}

// List returns instrument ids with a persisted model, sorted
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list model dir: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, modelFileSuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, modelFileSuffix))
	}
	sort.Strings(ids)
	return ids, nil
}

// Stream returns a lazy iterator over the store: the directory listing
// is read up front, but each artifact is deserialized only when the
// iterator reaches it.
func (s *Store) Stream() (*Stream, error) {
	ids, err := s.List()
	if err != nil {
		return nil, err
	}
	return &Stream{store: s, ids: ids, pos: -1}, nil
}

// Stream walks persisted models one at a time
type Stream struct {
	store *Store
	ids   []string
	pos   int

	current *TrainedModel
	err     error
}

// Next advances to the next artifact, skipping entries that fail to
// load (the failure is retained and reported by Err).
func (st *Stream) Next() bool {
	for {
		st.pos++
		if st.pos >= len(st.ids) {
			return false
		}
		m, err := st.store.Load(st.ids[st.pos])
		if err != nil {
			st.err = err
			st.store.logger.WithError(err).WithField("instrument", st.ids[st.pos]).
				Warn("Skipping unreadable model artifact")
			continue
		}
		st.current = m
		return true
	}
}

// InstrumentID returns the current artifact's instrument id
func (st *Stream) InstrumentID() string {
	return st.ids[st.pos]
}

// Model returns the current artifact
func (st *Stream) Model() *TrainedModel {
	return st.current
}

// Err returns the last load error encountered while streaming
func (st *Stream) Err() error {
	return st.err
}
