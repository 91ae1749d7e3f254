package models

import "gorm.io/gorm"

// AutoMigrate creates or updates every table the engine uses.
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Post{}, "Tags", &PostTag{}); err != nil {
		return err
	}
	return db.AutoMigrate(
		&Tag{},
		&Post{},
		&PostTranslation{},
		&PostTag{},
		&Reaction{},
		&Bookmark{},
		&Follow{},
	)
}
