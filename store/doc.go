// Package store holds the persisted records and the gorm repositories
// that read and write them.
//
// Lookups that find nothing return (nil, nil); callers decide whether a
// missing record is an error. Every contact query is scoped by tenant.
package store
