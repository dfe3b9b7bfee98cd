package httputil

import (
	"net/url"
	"reflect"
)

// GetURLFields returns the names of all fields of the filter that are set
// in the query string and can be used directly in a gorm query.
//
// As gorm uses any as type for the fields in a Where statement, the names
// are returned as []any.
//
// A field is skipped if it has the struct tag filterField:"false". Those
// fields are processed by explicit logic, e.g. for substring search.
func GetURLFields(url *url.URL, filter any) []any {
	var queryFields []any

	val := reflect.Indirect(reflect.ValueOf(filter))
	for i := 0; i < val.NumField(); i++ {
		field := val.Type().Field(i)
		param := field.Tag.Get("form")

		if param == "" || field.Tag.Get("filterField") == "false" {
			continue
		}

		if url.Query().Has(param) {
			queryFields = append(queryFields, field.Name)
		}
	}
	return queryFields
}
