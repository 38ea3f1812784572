package unitofwork

import "context"

// RepositoryFactory creates units of work. Services hold the factory,
// never a bare *gorm.DB, so tests can swap the whole persistence layer.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
