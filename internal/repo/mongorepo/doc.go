// Package mongorepo implements the repo store contracts on MongoDB using the
// users, user_files and sessions collections.
package mongorepo
