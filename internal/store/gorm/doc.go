// Package gorm provides the GORM-backed implementations of the user and
// secret store contracts.
//
// # Database Schema
//
// The package auto-migrates three tables:
//   - users: user identities (username unique when present)
//   - provider_links: federated (provider, provider_user_id) links, composite
//     primary key so a pair can never map to two users
//   - secrets: the anonymous secret board (body unique for dedupe)
//
// Uniqueness constraints live in the schema, not in application logic:
// concurrent duplicate creation loses the race at the database, and the loser
// re-reads the winner's row.
//
// # Usage
//
//	db, _ := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
//	gormstore.AutoMigrate(db)
//	users := gormstore.NewUserStore(db)
//	board := gormstore.NewSecretStore(db)
//
// TranslateError must be enabled so unique-constraint violations surface as
// gorm.ErrDuplicatedKey across drivers.
package gorm
