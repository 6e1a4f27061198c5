package contact

// SQLType is the storage type of a column.
type SQLType int

const (
	TypeVirtual SQLType = iota
	TypeInteger
	TypeBigInt
	TypeChar
	TypeVarchar
	TypeText
	TypeDate
	TypeTimestamp
)

// IsTextual returns true for character and string types.
func (t SQLType) IsTextual() bool {
	switch t {
	case TypeChar, TypeVarchar, TypeText:
		return true
	default:
		return false
	}
}

// IsInteger returns true for integral numeric types.
func (t SQLType) IsInteger() bool {
	return t == TypeInteger || t == TypeBigInt
}

// Column is the resolved storage location of a Field.
type Column struct {
	Name string
	Type SQLType
}

const (
	// Table is the contact table.
	Table = "contacts"

	// DistributionListTable holds one row per distribution list member.
	DistributionListTable = "contacts_dlist"

	ColumnContextID             = "cid"
	ColumnObjectID              = "id"
	ColumnFolderID              = "folder_id"
	ColumnDisplayName           = "display_name"
	ColumnDistributionListCount = "dlist_count"

	// Columns of DistributionListTable.
	ColumnDListContextID   = "cid"
	ColumnDListContactID   = "contact_id"
	ColumnDListEmail       = "email"
	ColumnDListDisplayName = "display_name"
)

// Registry resolves fields to columns. Callers that keep their own column
// mapping implement it; DefaultRegistry serves the built-in table.
type Registry interface {
	Column(f Field) (Column, error)
}

// DefaultRegistry resolves fields through Resolve.
var DefaultRegistry Registry = registryFunc(Resolve)

type registryFunc func(Field) (Column, error)

func (rf registryFunc) Column(f Field) (Column, error) { return rf(f) }

// EmailFields are the address columns of a contact, in order.
var EmailFields = []Field{FieldEmail1, FieldEmail2, FieldEmail3}

// DefaultFulltextIndexFields is the column set of the autocomplete fulltext
// index when none is configured.
var DefaultFulltextIndexFields = []Field{
	FieldDisplayName,
	FieldSurName,
	FieldGivenName,
	FieldTitle,
	FieldSuffix,
	FieldMiddleName,
	FieldCompany,
	FieldEmail1,
	FieldEmail2,
	FieldEmail3,
}
