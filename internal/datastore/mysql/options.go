package mysql

import (
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/opencontacts/contactsql/pkg/validation"
)

// DefaultSchemaTable maps context ids to the schema holding their data.
const DefaultSchemaTable = "context_server2db_pool"

type metadataOptions struct {
	dsnCatalog  string
	schemaTable string
}

// Option configures Metadata.
type Option func(*metadataOptions) error

func generateConfig(options []Option) (metadataOptions, error) {
	computed := metadataOptions{
		schemaTable: DefaultSchemaTable,
	}

	for _, option := range options {
		if err := option(&computed); err != nil {
			return metadataOptions{}, err
		}
	}

	return computed, nil
}

// WithDSN reports the database named in the DSN as catalog when the
// connection does not have a default database selected.
//
// This value defaults to no fallback.
func WithDSN(dsn string) Option {
	return func(mo *metadataOptions) error {
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return fmt.Errorf("invalid mysql DSN: %w", err)
		}
		mo.dsnCatalog = cfg.DBName
		return nil
	}
}

// WithSchemaTable sets the table mapping context ids to schema names. It may
// be qualified with a schema.
//
// This value defaults to `DefaultSchemaTable`.
func WithSchemaTable(table string) Option {
	return func(mo *metadataOptions) error {
		for _, part := range strings.Split(table, ".") {
			if err := validation.SchemaName(part); err != nil {
				return fmt.Errorf("invalid schema table `%s`: %w", table, err)
			}
		}
		mo.schemaTable = table
		return nil
	}
}
