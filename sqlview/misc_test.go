package sqlview

import (
	"fmt"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newGORMMock opens a gorm connection of the given dialect on top of sqlmock.
func newGORMMock(dialect string) (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	var dialector gorm.Dialector
	switch dialect {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			Conn:                      mockDB,
			SkipInitializeWithVersion: true,
		})
	case "postgres":
		dialector = postgres.New(postgres.Config{
			Conn: mockDB,
		})
	default:
		return "", nil, nil, fmt.Errorf("unknown dialect '%s'", dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return "", nil, nil, err
	}

	return dialect, db, mock, nil
}

func newGORMMySQLMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	return newGORMMock("mysql")
}

func newGORMPostgresMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	return newGORMMock("postgres")
}
