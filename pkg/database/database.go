package database

import (
	"fmt"
	"log"
	"lpd_backend/internal/config"
	"lpd_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
		cfg.Database.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// Schema changes in release mode only happen when explicitly requested.
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Println("Database migration completed")
	}

	return db, nil
}

// Migrate creates or updates the schema for every model the dashboard owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Dashboard{},
		&model.Section{},
		&model.QualitativeQuestion{},
		&model.MultipleChoiceQuestion{},
		&model.RankingQuestion{},
		&model.LikertScaleQuestion{},
		&model.KnowledgeComponent{},
		&model.AnswerOption{},
		&model.QualitativeAnswer{},
		&model.QuantitativeAnswer{},
		&model.Score{},
		&model.Submission{},
		&model.ProfileExport{},
	)
}
