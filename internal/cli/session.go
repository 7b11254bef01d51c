package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/roach88/launchdeck/internal/analytics"
	"github.com/roach88/launchdeck/internal/config"
	"github.com/roach88/launchdeck/internal/engine"
	"github.com/roach88/launchdeck/internal/loader"
	"github.com/roach88/launchdeck/internal/mission"
	"github.com/roach88/launchdeck/internal/store"
)

// session is one loaded dataset and the backend answering queries on it.
type session struct {
	dataset  *mission.Dataset
	backend  engine.Backend
	store    *store.Store // nil for the memory backend
	registry *prometheus.Registry
	logger   *slog.Logger
}

// openSession loads the configured dataset and opens the configured
// backend. A SQLite mirror is re-imported only when the dataset changed.
func (o *RootOptions) openSession(ctx context.Context, runID string) (*session, error) {
	cfg := o.Config
	logger := o.Logger.With("run_id", runID)

	ds, err := loader.LoadFile(cfg.Dataset.Path, loader.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	s := &session{
		dataset:  ds,
		registry: prometheus.NewRegistry(),
		logger:   logger,
	}
	metrics := engine.NewMetrics(s.registry)

	switch cfg.Backend.Kind {
	case config.BackendSQLite:
		st, err := store.Open(cfg.Backend.SQLitePath, store.WithMetrics(metrics), store.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("open mirror: %w", err)
		}
		imported, err := st.Sync(ctx, ds)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("sync mirror: %w", err)
		}
		logger.Debug("mirror ready", "path", cfg.Backend.SQLitePath, "imported", imported)
		s.store = st
		s.backend = st
	default:
		s.backend = engine.New(ds, engine.WithMetrics(metrics), engine.WithLogger(logger))
	}
	return s, nil
}

func (s *session) analytics() *analytics.Analytics {
	return analytics.New(s.backend)
}

// close releases the mirror and, when dump is set, writes the metrics in
// the Prometheus text format to w.
func (s *session) close(w io.Writer, dump bool) error {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			return err
		}
	}
	if !dump {
		return nil
	}
	return writeMetrics(w, s.registry)
}

// writeMetrics encodes every gathered metric family in text format.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}

// withSession opens a session, runs fn and closes the session. Failures to
// open are reported through out.
func (o *RootOptions) withSession(cmd *cobra.Command, out *OutputFormatter, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	s, err := o.openSession(ctx, out.TraceID)
	if err != nil {
		return out.Fail(err)
	}

	err = fn(ctx, s)
	if cerr := s.close(out.GetErrWriter(), o.Metrics); cerr != nil && err == nil {
		err = out.Fail(cerr)
	}
	return err
}
