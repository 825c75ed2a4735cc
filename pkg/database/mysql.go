package database

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"sgo-sapem/pkg/log"
)

var DB *gorm.DB

// InitMySQL opens the MySQL connection and tunes the pool.
func InitMySQL(dsn string) {
	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		// Translate driver errors so duplicate-key and FK violations can be
		// matched with errors.Is against gorm.ErrDuplicatedKey / ErrForeignKeyViolated.
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("failed to connect database", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("MySQL database connected successfully")
}
