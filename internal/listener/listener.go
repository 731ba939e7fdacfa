package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"pricetags/internal/config"
	"pricetags/internal/logging"
	"pricetags/internal/pipeline"
)

// Service watches a drop folder and loads every price list that appears or
// changes there. With auto output on, each load is exported and rendered
// into OUTPUT_DIR/listener.
type Service struct {
	svc  *pipeline.ProcessingService
	cfg  config.Config
	log  *slog.Logger
	seen map[string]time.Time
}

type CycleResult struct {
	Scanned int
	Loaded  int
	Failed  int
}

func NewService(svc *pipeline.ProcessingService, cfg config.Config, log *slog.Logger) *Service {
	return &Service{
		svc:  svc,
		cfg:  cfg,
		log:  logging.Module(log, "listener"),
		seen: map[string]time.Time{},
	}
}

func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.WatchIntervalSec) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	for {
		if _, err := s.RunCycle(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			s.log.Error("listener cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// RunCycle loads the files that are new or modified since the last cycle.
// A file that fails to load is retried only after it changes again.
func (s *Service) RunCycle(ctx context.Context) (CycleResult, error) {
	var result CycleResult
	entries, err := os.ReadDir(s.cfg.WatchDir)
	if err != nil {
		return result, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || filepath.Ext(e.Name()) == "" {
			continue
		}
		if _, err := pipeline.DetectFormat(e.Name(), nil); err != nil {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		path := filepath.Join(s.cfg.WatchDir, name)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		result.Scanned++
		if prev, ok := s.seen[path]; ok && !info.ModTime().After(prev) {
			continue
		}
		s.seen[path] = info.ModTime()

		if err := s.process(ctx, path); err != nil {
			if errors.Is(err, context.Canceled) {
				return result, err
			}
			result.Failed++
			s.log.Warn("price list not loaded", "path", path, "error", err)
			continue
		}
		result.Loaded++
	}

	s.log.Info("listener cycle done", "dir", s.cfg.WatchDir, "scanned", result.Scanned, "loaded", result.Loaded, "failed", result.Failed)
	return result, nil
}

func (s *Service) process(ctx context.Context, path string) error {
	ds, err := s.svc.LoadFile(ctx, path)
	if err != nil {
		return err
	}
	if !s.cfg.WatchAutoOutput {
		return nil
	}

	base := sanitizeName(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	outDir := filepath.Join(s.cfg.OutputDir, "listener")
	if err := pipeline.ExportLabelsToXLSX(ds.Records, filepath.Join(outDir, base+".xlsx")); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}

	f, err := os.Create(filepath.Join(outDir, base+".html"))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pipeline.RenderLabelsHTML(f, base, ds.Records, s.cfg.PageSize, s.log); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return nil
}

func sanitizeName(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	if out == "" {
		out = "labels"
	}
	return out
}
