package mysql

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// nothing listens on the discard port
const unreachableDSN = "contacts:secret@tcp(127.0.0.1:9)/contacts_1?timeout=1s"

func TestOpenInstrumented(t *testing.T) {
	registry := prometheus.NewRegistry()
	db, err := Open(unreachableDSN, registry)
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.Error(t, db.PingContext(ctx))

	families, err := registry.Gather()
	require.NoError(t, err)

	var names []string
	for _, family := range families {
		names = append(names, family.GetName())
	}
	require.Contains(t, names, "contactsql_mysql_connect_duration_seconds")
	require.Contains(t, names, "contactsql_mysql_connect_count_total")
	require.True(t, strings.Contains(strings.Join(names, ","), "go_sql_"), "pool statistics not exported: %v", names)

	count, err := promtestutil.GatherAndCount(registry, "contactsql_mysql_connect_count_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestOpenTwiceWithOneRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	db, err := Open(unreachableDSN, registry)
	require.NoError(t, err)
	defer db.Close()

	_, err = Open(unreachableDSN, registry)
	require.ErrorContains(t, err, "unable to register metric")
}

func TestOpenWithoutMetrics(t *testing.T) {
	db, err := Open(unreachableDSN, nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Open("no slash", nil)
	require.Error(t, err)
}
