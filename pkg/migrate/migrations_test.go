package migrate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Product Index!!")
	require.NoError(t, err)
	require.Regexp(t, `\d{14}_add_product_index\.sql$`, path)

	require.NoError(t, ValidateDir(dir))
}
