package cmd

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/uber-go/tally/v4"
)

// rootMetricScope prefixes every metric the CLI reports.
const rootMetricScope = "cloudlet_sim"

// logReporter is a tally.StatsReporter that writes each flushed metric as a
// structured log line. Tags become log fields.
type logReporter struct {
	log logrus.FieldLogger
}

func newLogReporter(log logrus.FieldLogger) *logReporter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &logReporter{log: log}
}

func (r *logReporter) entry(kind, name string, tags map[string]string) *logrus.Entry {
	fields := logrus.Fields{"metric": name, "type": kind}
	for k, v := range tags {
		fields[k] = v
	}
	return r.log.WithFields(fields)
}

func (r *logReporter) ReportCounter(name string, tags map[string]string, value int64) {
	r.entry("counter", name, tags).WithField("value", value).Info("metric")
}

func (r *logReporter) ReportGauge(name string, tags map[string]string, value float64) {
	r.entry("gauge", name, tags).WithField("value", value).Info("metric")
}

func (r *logReporter) ReportTimer(name string, tags map[string]string, interval time.Duration) {
	r.entry("timer", name, tags).WithField("value", interval.String()).Info("metric")
}

func (r *logReporter) ReportHistogramValueSamples(
	name string,
	tags map[string]string,
	_ tally.Buckets,
	bucketLowerBound, bucketUpperBound float64,
	samples int64,
) {
	r.entry("histogram", name, tags).WithFields(logrus.Fields{
		"lower":   bucketLowerBound,
		"upper":   bucketUpperBound,
		"samples": samples,
	}).Info("metric")
}

func (r *logReporter) ReportHistogramDurationSamples(
	name string,
	tags map[string]string,
	_ tally.Buckets,
	bucketLowerBound, bucketUpperBound time.Duration,
	samples int64,
) {
	r.entry("histogram", name, tags).WithFields(logrus.Fields{
		"lower":   bucketLowerBound.String(),
		"upper":   bucketUpperBound.String(),
		"samples": samples,
	}).Info("metric")
}

func (r *logReporter) Capabilities() tally.Capabilities { return r }

// Reporting and Tagging make logReporter its own tally.Capabilities.
func (r *logReporter) Reporting() bool { return true }
func (r *logReporter) Tagging() bool   { return true }

func (r *logReporter) Flush() {}

// initMetricScope builds the root scope for a CLI run. When metrics are
// disabled it returns a nil scope, which the simulator treats as a no-op.
// The metric lines go to out at Info level regardless of --log so that
// --metrics works with the default error-level logging.
func initMetricScope(enabled bool, out io.Writer, flushInterval time.Duration) (tally.Scope, io.Closer) {
	if !enabled {
		return nil, nopCloser{}
	}
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(logrus.InfoLevel)
	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix:    rootMetricScope,
		Tags:      map[string]string{},
		Reporter:  newLogReporter(logger),
		Separator: ".",
	}, flushInterval)
	return scope, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
