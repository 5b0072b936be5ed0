package database

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// RedisPoolStatsCollector exports go-redis connection pool statistics.
type RedisPoolStatsCollector struct {
	client  *redis.Client
	service string

	hits       *prometheus.Desc
	misses     *prometheus.Desc
	timeouts   *prometheus.Desc
	totalConns *prometheus.Desc
	idleConns  *prometheus.Desc
	staleConns *prometheus.Desc
}

// NewRedisPoolStatsCollector creates a collector for client's pool.
func NewRedisPoolStatsCollector(client *redis.Client, service string) *RedisPoolStatsCollector {
	labels := []string{"service"}
	return &RedisPoolStatsCollector{
		client:     client,
		service:    service,
		hits:       prometheus.NewDesc("redis_pool_hits_total", "Times a free connection was found in the pool", labels, nil),
		misses:     prometheus.NewDesc("redis_pool_misses_total", "Times a free connection was not found in the pool", labels, nil),
		timeouts:   prometheus.NewDesc("redis_pool_timeouts_total", "Times a wait for a connection timed out", labels, nil),
		totalConns: prometheus.NewDesc("redis_pool_total_conns", "Total connections in the pool", labels, nil),
		idleConns:  prometheus.NewDesc("redis_pool_idle_conns", "Idle connections in the pool", labels, nil),
		staleConns: prometheus.NewDesc("redis_pool_stale_conns_total", "Stale connections removed from the pool", labels, nil),
	}
}

func (c *RedisPoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.timeouts
	ch <- c.totalConns
	ch <- c.idleConns
	ch <- c.staleConns
}

func (c *RedisPoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.client.PoolStats()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits), c.service)
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses), c.service)
	ch <- prometheus.MustNewConstMetric(c.timeouts, prometheus.CounterValue, float64(s.Timeouts), c.service)
	ch <- prometheus.MustNewConstMetric(c.totalConns, prometheus.GaugeValue, float64(s.TotalConns), c.service)
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, float64(s.IdleConns), c.service)
	ch <- prometheus.MustNewConstMetric(c.staleConns, prometheus.CounterValue, float64(s.StaleConns), c.service)
}
