package migration

import (
	"io/fs"
	"strings"
	"sync"
	"testing"

	catalogdomain "github.com/smallbiznis/salesledger/internal/catalog/domain"
	orderdomain "github.com/smallbiznis/salesledger/internal/order/domain"
	"github.com/smallbiznis/salesledger/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	files, err := Files()
	require.NoError(t, err)

	entries, err := fs.ReadDir(files, ".")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestOrderItemsReferenceConstraints(t *testing.T) {
	files, err := Files()
	require.NoError(t, err)

	body, err := fs.ReadFile(files, "000002_create_orders.up.sql")
	require.NoError(t, err)
	sql := string(body)

	assert.Contains(t, sql, "REFERENCES orders (id) ON DELETE CASCADE")
	assert.Contains(t, sql, "REFERENCES products (id) ON DELETE RESTRICT")
}

func TestRunMigrationsRequiresHandle(t *testing.T) {
	assert.Error(t, RunMigrations(nil))
}

func TestAutoMigrateModels(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, AutoMigrateModels(conn))

	for _, table := range []string{"products", "orders", "order_items"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}
}

// MySQL cannot index TEXT columns without a prefix length, so every indexed
// string column needs a bounded type.
func TestIndexedColumnsAreBounded(t *testing.T) {
	for _, model := range []any{&catalogdomain.Product{}, &orderdomain.Order{}, &orderdomain.OrderItem{}} {
		s, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
		require.NoError(t, err)

		for _, field := range s.Fields {
			_, indexed := field.TagSettings["INDEX"]
			_, unique := field.TagSettings["UNIQUEINDEX"]
			if !indexed && !unique || field.GORMDataType != schema.String {
				continue
			}
			typ := strings.ToLower(field.TagSettings["TYPE"])
			assert.True(t, strings.HasPrefix(typ, "varchar("), "%s.%s uses %q", s.Table, field.DBName, typ)
		}
	}
}

func TestAttributesColumnFollowsDialect(t *testing.T) {
	conn := &gorm.DB{Config: &gorm.Config{Dialector: mysql.New(mysql.Config{})}}
	assert.Equal(t, "JSON", datatypes.JSONMap{}.GormDBDataType(conn, nil))

	s, err := schema.Parse(&catalogdomain.Product{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	field := s.LookUpField("attributes")
	require.NotNil(t, field)
	assert.Empty(t, field.TagSettings["TYPE"])
}
