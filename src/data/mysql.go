package data

import (
	"log"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// GetMySQLDSN returns the MySQL DSN configured via environment.
func GetMySQLDSN() string {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "modfeed:modfeed@tcp(127.0.0.1:3306)/modfeed?parseTime=true"
	}
	return dsn
}

func MustMySQL(dsn string) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	return db
}
