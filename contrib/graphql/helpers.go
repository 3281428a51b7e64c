package graphql

import (
	"fmt"
	"slices"

	"github.com/go-openapi/inflect"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/modelc"
)

// GraphQL names shared by all schemas.
const (
	// GQLFieldID is the name of the single primary key argument.
	GQLFieldID = "id"
	// GQLTypePageInfo is the Relay page info type.
	GQLTypePageInfo = "PageInfo"
	// GQLScalarCursor is the Relay cursor scalar.
	GQLScalarCursor = "Cursor"
)

// PaginationNames holds the names of the pagination types of a node.
type PaginationNames struct {
	Connection string
	Edge       string
	Node       string
}

// paginationNames returns the pagination type names of a node.
func paginationNames(node string) *PaginationNames {
	return &PaginationNames{
		Connection: fmt.Sprintf("%sConnection", node),
		Edge:       fmt.Sprintf("%sEdge", node),
		Node:       node,
	}
}

// fieldName returns the GraphQL name of a model field or relation.
func fieldName(name string) string {
	return inflect.CamelizeDownFirst(name)
}

// listName returns the name of the query field listing a model.
func listName(model string) string {
	return inflect.Pluralize(inflect.CamelizeDownFirst(model))
}

// scalars maps column kinds to GraphQL scalars. Kinds missing here are
// exposed as String.
var scalars = map[modelc.TypeKind]string{
	modelc.KindInteger:      "Int",
	modelc.KindBigInteger:   "Int",
	modelc.KindSmallInteger: "Int",
	modelc.KindBoolean:      "Boolean",
	modelc.KindReal:         "Float",
	modelc.KindDouble:       "Float",
	modelc.KindDecimal:      "Decimal",
	modelc.KindDate:         "Date",
	modelc.KindTime:         "Clock",
	modelc.KindTimestamp:    "Time",
	modelc.KindTimestampTZ:  "Time",
	modelc.KindInterval:     "Duration",
	modelc.KindUUID:         "UUID",
	modelc.KindJSON:         "JSON",
	modelc.KindJSONB:        "JSON",
	modelc.KindHStore:       "Map",
}

// builtin reports if the scalar is predefined by GraphQL.
func builtin(name string) bool {
	return slices.Contains([]string{"Int", "Float", "String", "Boolean", "ID"}, name)
}

// scalarType returns the GraphQL type of a column. The returned scalar name
// is the innermost named type, used to declare custom scalars.
func scalarType(ct modelc.ColumnType, nonNull bool) (*ast.Type, string) {
	if ct.IsArray() && ct.Elem != nil {
		elem, name := scalarType(*ct.Elem, true)
		if nonNull {
			return ast.NonNullListType(elem, nil), name
		}
		return ast.ListType(elem, nil), name
	}
	name, ok := scalars[ct.Kind]
	if !ok {
		name = "String"
	}
	return namedType(name, nonNull), name
}

func namedType(name string, nonNull bool) *ast.Type {
	if nonNull {
		return ast.NonNullNamedType(name, nil)
	}
	return ast.NamedType(name, nil)
}

// listOf returns the non-null list of non-null named items.
func listOf(name string) *ast.Type {
	return ast.NonNullListType(ast.NonNullNamedType(name, nil), nil)
}
