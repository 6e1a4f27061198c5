// Package mysql answers metadata questions about a MySQL contact database:
// which schema a connection uses, whether a fulltext index exists and which
// schema holds a context.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/ccoveille/go-safecast/v2"
	"github.com/rs/zerolog"

	"github.com/opencontacts/contactsql/internal/logging"
	"github.com/opencontacts/contactsql/pkg/compiler/fulltext"
	"github.com/opencontacts/contactsql/pkg/contact"
)

const (
	informationSchemaStatisticsTable = "INFORMATION_SCHEMA.STATISTICS"

	colTableSchema = "TABLE_SCHEMA"
	colTableName   = "TABLE_NAME"
	colIndexName   = "INDEX_NAME"
	colIndexType   = "INDEX_TYPE"
	colColumnName  = "COLUMN_NAME"
	colSeqInIndex  = "SEQ_IN_INDEX"

	indexTypeFulltext = "FULLTEXT"

	colContextID = "cid"
	colSchema    = "db_schema"

	currentDatabaseQuery = "SELECT DATABASE()"
)

var (
	sb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

	likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
)

var (
	_ fulltext.Connection     = (*Metadata)(nil)
	_ fulltext.SchemaResolver = (*Metadata)(nil)
)

// Metadata queries a MySQL database for the fulltext capability cache.
type Metadata struct {
	db          *sql.DB
	dsnCatalog  string
	schemaTable string
	logger      zerolog.Logger
}

// NewMetadata returns a metadata reader using db.
func NewMetadata(db *sql.DB, options ...Option) (*Metadata, error) {
	config, err := generateConfig(options)
	if err != nil {
		return nil, err
	}

	return &Metadata{
		db:          db,
		dsnCatalog:  config.dsnCatalog,
		schemaTable: config.schemaTable,
		logger:      logging.Component("mysql"),
	}, nil
}

// Catalog returns the connection's default database, falling back to the
// database named in the DSN. It is empty if neither is known.
func (m *Metadata) Catalog(ctx context.Context) (string, error) {
	var current sql.NullString
	if err := m.db.QueryRowContext(ctx, currentDatabaseQuery).Scan(&current); err != nil {
		return "", fmt.Errorf("unable to query current database: %w", err)
	}

	if current.Valid && current.String != "" {
		return current.String, nil
	}
	return m.dsnCatalog, nil
}

// HasFulltextIndex reports whether a fulltext index on the contact table whose
// name starts with prefix covers exactly the columns, in order. Column names
// are compared case insensitively.
func (m *Metadata) HasFulltextIndex(ctx context.Context, schema, prefix string, columns []string) (bool, error) {
	query, args, err := sb.
		Select(colIndexName, colColumnName).
		From(informationSchemaStatisticsTable).
		Where(sq.Eq{
			colTableSchema: schema,
			colTableName:   contact.Table,
			colIndexType:   indexTypeFulltext,
		}).
		Where(sq.Like{colIndexName: likeEscaper.Replace(prefix) + "%"}).
		OrderBy(colIndexName, colSeqInIndex).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("unable to generate query sql: %w", err)
	}
	logging.Statement(m.logger.Trace(), query, args).Msg("looking up fulltext indexes")

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return false, wrapQueryError(err, "look up fulltext indexes", informationSchemaStatisticsTable)
	}
	defer rows.Close()

	var (
		indexes []string
		indexed = make(map[string][]string)
	)
	for rows.Next() {
		var name, column string
		if err := rows.Scan(&name, &column); err != nil {
			return false, fmt.Errorf("unable to read fulltext index column: %w", err)
		}
		if _, ok := indexed[name]; !ok {
			indexes = append(indexes, name)
		}
		indexed[name] = append(indexed[name], column)
	}
	if err := rows.Err(); err != nil {
		return false, wrapQueryError(err, "look up fulltext indexes", informationSchemaStatisticsTable)
	}

	for _, name := range indexes {
		if sameColumns(indexed[name], columns) {
			m.logger.Debug().Str("schema", schema).Str("index", name).Msg("found fulltext index")
			return true, nil
		}
	}
	m.logger.Debug().Str("schema", schema).Strs("candidates", indexes).Msg("no matching fulltext index")
	return false, nil
}

// SchemaName returns the schema holding the context's data.
func (m *Metadata) SchemaName(ctx context.Context, contextID int) (string, error) {
	cid, err := safecast.Convert[uint32](contextID)
	if err != nil {
		return "", fmt.Errorf("invalid context id %d: %w", contextID, err)
	}

	query, args, err := sb.
		Select(colSchema).
		From(m.schemaTable).
		Where(sq.Eq{colContextID: cid}).
		Limit(1).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("unable to generate query sql: %w", err)
	}
	logging.Statement(m.logger.Trace(), query, args).Msg("looking up context schema")

	var schema string
	if err := m.db.QueryRowContext(ctx, query, args...).Scan(&schema); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("context %d is not assigned to a schema", contextID)
		}
		return "", wrapQueryError(err, "look up context schema", m.schemaTable)
	}
	return schema, nil
}

func sameColumns(indexed, wanted []string) bool {
	if len(indexed) != len(wanted) {
		return false
	}
	for i := range indexed {
		if !strings.EqualFold(indexed[i], wanted[i]) {
			return false
		}
	}
	return true
}
