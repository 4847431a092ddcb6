// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migration runner
//	├── migrations.go    # Ordered schema migration steps
//	├── shows/           # Show, image and season/episode metadata
//	├── episodes/        # Season and episode operations
//	├── followedshows/   # Library membership (followed shows)
//	├── watched/         # Watch history entries
//	├── syncstate/       # Sync progress tracking
//	├── settings/        # Application settings
//	└── users/           # Remote catalog profile
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./tivi.db")
//
//	showsRepo := shows.NewRepository(db.DB)
//	library := followedshows.NewRepository(db.DB)
//
//	detail, err := showsRepo.GetShowWithImages(123)
//	entries, err := library.ListFollowed()
//
// # Schema versioning
//
// The schema is versioned: migrations.go declares an ordered list of steps up
// to the current version, and NewDatabase applies the missing ones in order,
// recording each in schema_migrations. Entities not declared by a migration
// step are inaccessible to the data layer.
package database
