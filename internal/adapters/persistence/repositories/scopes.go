package repositories

import "gorm.io/gorm"

// Soft deletion is a plain nullable timestamp, not gorm's DeletedAt: no
// query gets filtered behind our back. Every read path states its scope by
// applying one of these predicates, or by deliberately applying none.

// activeOnly keeps rows whose deletion timestamp is unset
func activeOnly(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}

// deletedOnly keeps soft-deleted rows
func deletedOnly(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NOT NULL")
}
