package main

import (
	"fmt"
	"time"

	"github.com/joshuapare/regexport/internal/metrics"
	"github.com/joshuapare/regexport/pkg/regexport"
	"github.com/joshuapare/regexport/pkg/types"
)

// session is one traversal run: the opened backend, the exporter over it
// and, when requested, the metrics collector it reports to.
type session struct {
	a        *app
	backend  types.Backend
	exporter *regexport.Exporter
	metrics  *metrics.Collector
}

func (a *app) newSession() (*session, error) {
	backend, err := openBackend(a.cfg)
	if err != nil {
		return nil, err
	}
	s := &session{a: a, backend: backend}

	opts := regexport.Options{
		Computername: a.cfg.Computername,
		Logger:       a.logger,
	}
	if a.cfg.MetricsFile != "" {
		s.metrics = metrics.New()
		opts.Observer = s.metrics
	}
	s.exporter = regexport.New(backend, opts)
	return s, nil
}

// export traverses paths with the configured recursion.
func (s *session) export(paths []string) []types.Record {
	records, err := s.exporter.Export(paths, s.a.cfg.Recurse)
	if err != nil {
		s.a.logger.Debug("export finished with failures", "error", err)
	}
	return records
}

// finish writes metrics, closes the backend, reports diagnostics and turns
// error diagnostics into errBatchFailed.
func (s *session) finish() error {
	if s.metrics != nil {
		s.metrics.Finish(time.Now())
		if err := s.metrics.WriteTextfile(s.a.cfg.MetricsFile); err != nil {
			s.a.logger.Error("writing metrics failed", "path", s.a.cfg.MetricsFile, "error", err)
		}
	}
	if err := s.backend.Close(); err != nil {
		s.a.logger.Warn("closing backend failed", "error", err)
	}
	report := s.exporter.Diagnostics()
	s.a.printReport(report)
	if report.HasErrors() {
		return errBatchFailed
	}
	return nil
}

// printReport writes the end-of-run diagnostics to stderr unless --quiet is
// set. JSON console logging gets a JSON report.
func (a *app) printReport(report *types.DiagnosticReport) {
	if a.quiet || !report.HasAnyIssues() {
		return
	}
	if a.cfg.Log.Format == "json" {
		js, err := report.FormatJSON()
		if err != nil {
			a.logger.Error("rendering diagnostics failed", "error", err)
			return
		}
		fmt.Fprintln(a.errOut, js)
		return
	}
	fmt.Fprint(a.errOut, "\n"+report.FormatText())
}
