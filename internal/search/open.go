package search

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/opencontacts/contactsql/internal/config"
	"github.com/opencontacts/contactsql/internal/datastore/mysql"
	"github.com/opencontacts/contactsql/pkg/closer"
)

var (
	_ Source   = (*config.FileSource)(nil)
	_ Database = (*mysql.Metadata)(nil)
)

// Open returns a service configured from the file at configPath, which is
// watched for changes until ctx is done or the service is closed, and reading
// database metadata through dsn. Metrics are registered with registerer,
// which may be nil.
func Open(ctx context.Context, configPath, dsn string, registerer prometheus.Registerer) (*Service, error) {
	var closers closer.Stack

	source, err := config.NewFileSource(configPath)
	if err != nil {
		return nil, err
	}

	db, err := mysql.Open(dsn, registerer)
	if err != nil {
		return nil, err
	}
	closers.AddCloser(db)

	metadata, err := mysql.NewMetadata(db, mysql.WithDSN(dsn))
	if err != nil {
		return nil, closers.CloseIfError(err)
	}

	s, err := NewService(source, metadata, registerer)
	if err != nil {
		return nil, closers.CloseIfError(err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := source.Watch(watchCtx); err != nil {
			s.logger.Error().Err(err).Msg("configuration is not watched")
		}
	}()
	closers.AddWithoutError(func() {
		cancel()
		<-done
	})

	// the watcher stops before the capability cache is released
	s.closers.AddWithError(closers.Close)
	return s, nil
}
