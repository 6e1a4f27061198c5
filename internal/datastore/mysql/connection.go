package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"

	"github.com/dlmiddlecote/sqlstats"
	"github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/opencontacts/contactsql/internal/logging"
)

type connectMetrics struct {
	duration prometheus.Histogram
	count    *prometheus.CounterVec
}

func newConnectMetrics(registerer prometheus.Registerer) (*connectMetrics, error) {
	m := &connectMetrics{
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "contactsql",
			Subsystem: "mysql",
			Name:      "connect_duration_seconds",
			Help:      "distribution in seconds of time spent opening a new MySQL connection.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 10, 25, 60, 120},
		}),
		count: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contactsql",
			Subsystem: "mysql",
			Name:      "connect_count_total",
			Help:      "number of mysql connections opened.",
		}, []string{"success"}),
	}

	for _, c := range []prometheus.Collector{m.duration, m.count} {
		if err := registerer.Register(c); err != nil {
			return nil, fmt.Errorf("unable to register metric: %w", err)
		}
	}
	return m, nil
}

// instrumentedConnector wraps the MySQL driver connector to measure opening
// new connections.
type instrumentedConnector struct {
	conn    driver.Connector
	drv     driver.Driver
	metrics *connectMetrics
}

func (ic *instrumentedConnector) Connect(ctx context.Context) (driver.Conn, error) {
	startTime := time.Now()
	defer func() {
		ic.metrics.duration.Observe(time.Since(startTime).Seconds())
	}()

	conn, err := ic.conn.Connect(ctx)
	ic.metrics.count.WithLabelValues(strconv.FormatBool(err == nil)).Inc()
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("failed to open mysql connection")
		return nil, fmt.Errorf("failed to open connection to mysql: %w", err)
	}

	return conn, nil
}

func (ic *instrumentedConnector) Driver() driver.Driver {
	return ic.drv
}

// Open returns a connection pool for the DSN. When registerer is non-nil,
// connection attempts and pool statistics are exported through it.
func Open(dsn string, registerer prometheus.Registerer) (*sql.DB, error) {
	connector, err := mysql.MySQLDriver{}.OpenConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to create mysql connector: %w", err)
	}
	if registerer == nil {
		return sql.OpenDB(connector), nil
	}

	metrics, err := newConnectMetrics(registerer)
	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(&instrumentedConnector{
		conn:    connector,
		drv:     connector.Driver(),
		metrics: metrics,
	})
	if err := registerer.Register(sqlstats.NewStatsCollector("contactsql", db)); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to register pool statistics: %w", err)
	}
	return db, nil
}
