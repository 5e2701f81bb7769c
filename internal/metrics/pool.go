package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

type poolMetric struct {
	desc  *prometheus.Desc
	kind  prometheus.ValueType
	value func(*pgxpool.Stat) float64
}

// PoolCollector implements prometheus.Collector for one pgxpool.
// Stats are read on each scrape.
type PoolCollector struct {
	name    string
	stat    func() *pgxpool.Stat
	metrics []poolMetric
}

// NewPoolCollector exports the stats of pool under the label pool=name.
// A nil pool yields a collector that describes its metrics but emits none.
func NewPoolCollector(name string, pool *pgxpool.Pool) *PoolCollector {
	c := &PoolCollector{name: name}
	if pool != nil {
		c.stat = pool.Stat
	}

	add := func(metric, help string, kind prometheus.ValueType, value func(*pgxpool.Stat) float64) {
		c.metrics = append(c.metrics, poolMetric{
			desc:  prometheus.NewDesc("sheetdesk_pgxpool_"+metric, help, []string{"pool"}, nil),
			kind:  kind,
			value: value,
		})
	}
	counter, gauge := prometheus.CounterValue, prometheus.GaugeValue

	add("acquire_count", "Cumulative count of successful connection acquires.", counter,
		func(s *pgxpool.Stat) float64 { return float64(s.AcquireCount()) })
	add("acquire_duration_seconds", "Cumulative time spent acquiring connections.", counter,
		func(s *pgxpool.Stat) float64 { return s.AcquireDuration().Seconds() })
	add("canceled_acquire_count", "Cumulative count of acquires canceled by context.", counter,
		func(s *pgxpool.Stat) float64 { return float64(s.CanceledAcquireCount()) })
	add("empty_acquire_count", "Cumulative count of acquires that waited on an empty pool.", counter,
		func(s *pgxpool.Stat) float64 { return float64(s.EmptyAcquireCount()) })
	add("new_conns_count", "Cumulative count of new connections opened.", counter,
		func(s *pgxpool.Stat) float64 { return float64(s.NewConnsCount()) })
	add("max_idle_destroy_count", "Cumulative count of connections closed for idling.", counter,
		func(s *pgxpool.Stat) float64 { return float64(s.MaxIdleDestroyCount()) })
	add("max_lifetime_destroy_count", "Cumulative count of connections closed at max lifetime.", counter,
		func(s *pgxpool.Stat) float64 { return float64(s.MaxLifetimeDestroyCount()) })
	add("acquired_conns", "Connections currently checked out.", gauge,
		func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) })
	add("constructing_conns", "Connections currently being opened.", gauge,
		func(s *pgxpool.Stat) float64 { return float64(s.ConstructingConns()) })
	add("idle_conns", "Idle connections in the pool.", gauge,
		func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) })
	add("max_conns", "Maximum pool size.", gauge,
		func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) })
	add("total_conns", "Total connections in the pool.", gauge,
		func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) })

	return c
}

// Describe implements prometheus.Collector.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

// Collect implements prometheus.Collector.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	if c.stat == nil {
		return
	}
	stat := c.stat()
	for _, m := range c.metrics {
		ch <- prometheus.MustNewConstMetric(m.desc, m.kind, m.value(stat), c.name)
	}
}
