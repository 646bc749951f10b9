package calculator

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"go-decimal-calculator/internal/calculation"
)

// SaveHistory writes the current history to cfg.HistoryFile() as a JSON
// array of records. The file is replaced atomically through a sibling
// temp file.
func (c *Calculator) SaveHistory() error {
	err := c.saveHistory()
	if err != nil {
		historySavesTotal.WithLabelValues("error").Inc()
		return err
	}
	historySavesTotal.WithLabelValues("ok").Inc()
	return nil
}

// saveHistory holds saveMu across both the snapshot and the write so that
// concurrent saves land in snapshot order.
func (c *Calculator) saveHistory() error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	calcs := c.History()
	records := make([]calculation.Record, 0, len(calcs))
	for _, calc := range calcs {
		records = append(records, calc.ToRecord())
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	path := c.cfg.HistoryFile()

	if err := c.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(c.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := c.fs.Rename(tmp, path); err != nil {
		_ = c.fs.Remove(tmp)
		return fmt.Errorf("replace history file: %w", err)
	}

	c.logger.Debug("history saved",
		zap.String("path", path),
		zap.Int("records", len(records)),
	)
	return nil
}

// LoadHistory replaces the history with the contents of cfg.HistoryFile().
// A missing file yields an empty history. Every record's result is
// re-derived from its operands; a stored result that disagrees is logged
// and the re-derived one kept. Undo and redo stacks are cleared.
func (c *Calculator) LoadHistory() error {
	path := c.cfg.HistoryFile()

	exists, err := afero.Exists(c.fs, path)
	if err != nil {
		return fmt.Errorf("stat history file: %w", err)
	}

	var records []calculation.Record
	if exists {
		data, err := afero.ReadFile(c.fs, path)
		if err != nil {
			return fmt.Errorf("read history: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("decode history %s: %w", path, err)
			}
		}
	}

	calcs := make([]*calculation.Calculation, 0, len(records))
	for i, rec := range records {
		calc, err := calculation.FromRecord(rec)
		if err != nil {
			return fmt.Errorf("history record %d: %w", i, err)
		}
		if !calc.ResultMatches(rec.Result) {
			c.logger.Warn("loaded calculation result differs from saved result",
				zap.Int("record", i),
				zap.String("stored", rec.Result),
				zap.String("derived", calc.Result().String()),
			)
		}
		calcs = append(calcs, calc)
	}

	if limit := c.cfg.MaxHistorySize; limit > 0 && len(calcs) > limit {
		calcs = calcs[len(calcs)-limit:]
	}

	c.mu.Lock()
	c.history = calcs
	c.undo = nil
	c.redo = nil
	c.mu.Unlock()

	historySizeGauge.Set(float64(len(calcs)))
	c.logger.Info("history loaded",
		zap.String("path", path),
		zap.Int("records", len(calcs)),
	)
	return nil
}
