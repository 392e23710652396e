package persistence

import "gorm.io/gorm"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// paginate applies page/pageSize as offset/limit with sane bounds
func paginate(page, pageSize int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		switch {
		case pageSize <= 0:
			pageSize = defaultPageSize
		case pageSize > maxPageSize:
			pageSize = maxPageSize
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
