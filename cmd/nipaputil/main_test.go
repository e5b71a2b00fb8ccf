package main

import (
	"bytes"
	"regexp"
	"testing"

	"nipaputil/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"serve"},
		{"vrf", "add"}, {"vrf", "find"}, {"vrf", "search"}, {"vrf", "ls"}, {"vrf", "rm"},
		{"prefix", "find"}, {"prefix", "free"}, {"prefix", "add"}, {"prefix", "reserve"}, {"prefix", "ls"},
		{"pool", "add"}, {"pool", "ls"}, {"pool", "rm"},
		{"vlan", "insert"}, {"vlan", "query"}, {"vlan", "rm"},
	} {
		c, _, err := mainCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], c.Name())
	}
}

func TestVlanArg(t *testing.T) {
	id, err := vlanArg("1234")
	require.NoError(t, err)
	assert.Equal(t, 1234, id)

	_, err = vlanArg("abc")
	assert.Error(t, err)
}

func TestArgsValidated(t *testing.T) {
	var out bytes.Buffer
	mainCmd.SetOut(&out)
	mainCmd.SetErr(&out)
	mainCmd.SetArgs([]string{"prefix", "free", "209:123"})
	defer mainCmd.SetArgs(nil)

	_, err := mainCmd.ExecuteC()
	assert.Error(t, err)
}

func TestOpenStoreMigratesAndCloses(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	prevOpen, prevCfg := openDB, cfg
	defer func() { openDB, cfg = prevOpen, prevCfg }()
	openDB = func(driver, dsn string) (*gorm.DB, error) { return gdb, nil }
	cfg = &config.Config{}

	// psb_vlan уже есть, уникального индекса нет
	mock.ExpectQuery(regexp.QuoteMeta(`FROM information_schema.tables`)).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM pg_indexes`)).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE UNIQUE INDEX IF NOT EXISTS ux_psb_vlan_id_port ON "psb_vlan" ("vlanid", "porttype")`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	s, closeDB, err := openStore()
	require.NoError(t, err)
	require.NotNil(t, s)
	closeDB()

	assert.NoError(t, mock.ExpectationsWereMet())
}
