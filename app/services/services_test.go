package services_test

import (
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/pkg/storage"
)

// memDisk is an in-memory storage disk so import archives and CSV exports do
// not touch the filesystem during tests. Only the methods the services call
// are implemented; the embedded interface covers the rest.
type memDisk struct {
	storage.Disk
	mu    sync.Mutex
	files map[string][]byte
}

func newMemDisk() *memDisk {
	return &memDisk{files: map[string][]byte{}}
}

func (d *memDisk) Put(path string, content []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files[path] = append([]byte(nil), content...)
	return nil
}

func (d *memDisk) Get(path string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	content, ok := d.files[path]
	if !ok {
		return nil, fmt.Errorf("memdisk: %s not found", path)
	}
	return content, nil
}

func (d *memDisk) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.files)
}

var testDisk = newMemDisk()

func TestMain(m *testing.M) {
	storage.Connect()
	storage.RegisterDisk("local", testDisk)
	os.Exit(m.Run())
}

// testDB opens a fresh in-memory sqlite database with the full schema.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Location{},
		&models.User{},
		&models.Category{},
		&models.Buy{},
		&models.Item{},
		&models.Cart{},
		&models.CartItem{},
		&models.Operator{},
	))
	return db
}
