package db

import "context"

func (r *Repo) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// DatabaseSize 例如 "12 MB"
func (r *Repo) DatabaseSize(ctx context.Context) (string, error) {
	var size string
	err := r.DB.WithContext(ctx).
		Raw(`SELECT pg_size_pretty(pg_database_size(current_database()))`).
		Scan(&size).Error
	return size, err
}
