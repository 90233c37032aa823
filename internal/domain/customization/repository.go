package customization

import "context"

// Repository persists designs.  Implementations must treat Update as a
// compare-and-swap on Version: the write succeeds only when the stored version
// equals d.Version(), after which the stored and in-memory versions are both
// incremented.  A stale write fails with ErrCodeDesignVersionConflict.
type Repository interface {
	Create(ctx context.Context, d *Design) error
	Update(ctx context.Context, d *Design) error
	Get(ctx context.Context, id DesignID) (*Design, error)
	Delete(ctx context.Context, id DesignID) error
}

//Personal.AI order the ending
