package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/NaoufalLabrihmi/EMP-Gestion/models"
)

// ErrNotFound is returned when an employee id matches no row.
var ErrNotFound = errors.New("employee not found")

// Store is the database gateway. It keeps no open handle: every call dials
// the store, runs its statements and closes the connection before returning.
// All values travel as placeholders; the only interpolated identifiers are
// the fixed column names of the update allow-list.
type Store struct {
	driver string
	dsn    string
}

func New(driver, dsn string) *Store {
	return &Store{driver: driver, dsn: dsn}
}

func (s *Store) open(ctx context.Context) (*gorm.DB, func(), error) {
	var dial gorm.Dialector
	switch s.driver {
	case "mysql":
		dial = mysql.Open(s.dsn)
	case "sqlite":
		dial = sqlite.Open(s.dsn)
	default:
		return nil, nil, fmt.Errorf("unsupported db driver %q", s.driver)
	}
	db, err := gorm.Open(dial, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return db.WithContext(ctx), func() { sqlDB.Close() }, nil
}

// Migrate creates the employees table if it does not exist. Called once at
// startup.
func (s *Store) Migrate(ctx context.Context) error {
	db, closeDB, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer closeDB()
	if err := db.AutoMigrate(&models.Employee{}); err != nil {
		return fmt.Errorf("migrate employees: %w", err)
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, e *models.Employee) error {
	db, closeDB, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer closeDB()
	if err := db.Create(e).Error; err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

// List returns every employee, ordered by id ascending.
func (s *Store) List(ctx context.Context) ([]models.Employee, error) {
	db, closeDB, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer closeDB()
	employees := []models.Employee{}
	if err := db.Order("id asc").Find(&employees).Error; err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

func (s *Store) Get(ctx context.Context, id int) (*models.Employee, error) {
	db, closeDB, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer closeDB()
	var e models.Employee
	if err := db.First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get employee %d: %w", id, err)
	}
	return &e, nil
}

// Update applies the given column values to one row, then re-reads it. The
// caller has already filtered the map to the update allow-list. Returns
// ErrNotFound when the id matches no row.
func (s *Store) Update(ctx context.Context, id int, fields map[string]string) (*models.Employee, error) {
	db, closeDB, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer closeDB()

	values := make(map[string]interface{}, len(fields))
	for col, val := range fields {
		values[col] = val
	}
	if err := db.Model(&models.Employee{}).Where("id = ?", id).Updates(values).Error; err != nil {
		return nil, fmt.Errorf("update employee %d: %w", id, err)
	}

	var e models.Employee
	if err := db.First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reload employee %d: %w", id, err)
	}
	return &e, nil
}

// Delete removes the row if it exists. A missing id is not an error; the
// service reports success either way.
func (s *Store) Delete(ctx context.Context, id int) error {
	db, closeDB, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer closeDB()
	if err := db.Delete(&models.Employee{}, id).Error; err != nil {
		return fmt.Errorf("delete employee %d: %w", id, err)
	}
	return nil
}
