package decision

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wonny/tradewind/internal/contracts"
	"github.com/wonny/tradewind/pkg/logger"
)

// ErrLedgerNotFound signals that no decision ledger exists yet; trade
// execution treats this as a hard precondition failure.
var ErrLedgerNotFound = errors.New("decision ledger not found")

// ledgerHeader is the fixed CSV header of the decision ledger
var ledgerHeader = []string{
	"instrument_id", "predicted_return", "sentiment_score", "decision_score", "action",
}

// Ledger is the on-disk decision table for the latest orchestration
// cycle. Each run replaces the previous file atomically; historical
// runs live in the Postgres repository instead.
// ⭐ SSOT: 원장 파일 입출력은 여기서만
type Ledger struct {
	path   string
	logger *logger.Logger
}

// NewLedger creates a ledger bound to a CSV path
func NewLedger(path string, log *logger.Logger) *Ledger {
	return &Ledger{path: path, logger: log}
}

// Path returns the ledger file location
func (l *Ledger) Path() string {
	return l.path
}

// Exists reports whether a ledger file is present
func (l *Ledger) Exists() bool {
	_, err := os.Stat(l.path)
	return err == nil
}

// Write persists the batch's decisions, overwriting the previous run.
// The file is assembled in a temp file and renamed into place so a
// cancelled run never leaves a truncated ledger.
func (l *Ledger) Write(decisions []contracts.Decision) error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "ledger.tmp-*")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpName := tmp.Name()

	w := csv.NewWriter(tmp)
	if err := w.Write(ledgerHeader); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write ledger header: %w", err)
	}
	for _, d := range decisions {
		record := []string{
			d.InstrumentID,
			strconv.FormatFloat(d.PredictedReturn, 'g', -1, 64),
			strconv.FormatFloat(d.SentimentScore, 'g', -1, 64),
			strconv.FormatFloat(d.DecisionScore, 'g', -1, 64),
			string(d.Action),
		}
		if err := w.Write(record); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("write ledger row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flush ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename ledger: %w", err)
	}

	l.logger.WithFields(map[string]interface{}{
		"path": l.path,
		"rows": len(decisions),
	}).Info("Decision ledger written")
	return nil
}

// Read loads and parses the current ledger
func (l *Ledger) Read() ([]contracts.Decision, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrLedgerNotFound
		}
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("ledger %s is empty", l.path)
	}
	if len(records[0]) != len(ledgerHeader) || records[0][0] != ledgerHeader[0] {
		return nil, fmt.Errorf("ledger %s has unexpected header %v", l.path, records[0])
	}

	decisions := make([]contracts.Decision, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != len(ledgerHeader) {
			return nil, fmt.Errorf("ledger row has %d columns, want %d", len(rec), len(ledgerHeader))
		}
		predicted, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse predicted_return %q: %w", rec[1], err)
		}
		sentiment, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parse sentiment_score %q: %w", rec[2], err)
		}
		score, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("parse decision_score %q: %w", rec[3], err)
		}

		decisions = append(decisions, contracts.Decision{
			InstrumentID:    rec[0],
			PredictedReturn: predicted,
			SentimentScore:  sentiment,
			DecisionScore:   score,
			Action:          contracts.Action(rec[4]),
		})
	}
	return decisions, nil
}
