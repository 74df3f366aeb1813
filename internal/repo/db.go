package repo

import "github.com/doctran/doctran/internal/pkg/dbutil"

// finalize rebinds gendry-built queries for postgres.
func finalize(query string, args []interface{}) (string, []interface{}) {
	return dbutil.Finalize(query, args)
}
