package testdata

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/voltflow/crm/pkg/database"
	"github.com/voltflow/crm/pkg/store"
)

var dbSeq atomic.Int64

// OpenStore returns a Store over a private in-memory SQLite database that
// is closed when the test ends.
func OpenStore(t testing.TB) *store.Store {
	t.Helper()
	return store.New(OpenClient(t).Driver)
}

// OpenClient opens and migrates a private in-memory SQLite database
func OpenClient(t testing.TB) *database.Client {
	t.Helper()

	name := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_fk=1", name, dbSeq.Add(1))

	client, err := database.NewSQLiteClient(dsn)
	if err != nil {
		t.Fatalf("failed opening sqlite: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return client
}
