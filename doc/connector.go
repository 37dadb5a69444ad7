package doc

import (
	"context"
	"time"
)

// SyncConnector dials a websocket sync server, resolves the document, and
// holds for an initial-sync confirmation window before reporting the
// connection established. It satisfies the dispatcher's Connector
// interface.
type SyncConnector struct {
	// DefaultURL is used when a connect request carries no sync URL.
	DefaultURL string
	// Wait is the initial-sync confirmation window after Find.
	Wait time.Duration
	// NewRepo overrides repo construction. Test hook; nil means NewWSRepo.
	NewRepo func(url string) Repo
}

func (c SyncConnector) Connect(ctx context.Context, docID, syncURL string) (Repo, Handle, error) {
	url := syncURL
	if url == "" {
		url = c.DefaultURL
	}

	newRepo := c.NewRepo
	if newRepo == nil {
		newRepo = func(url string) Repo { return NewWSRepo(url) }
	}

	repo := newRepo(url)
	handle, err := repo.Find(ctx, docID)
	if err != nil {
		repo.Stop(ctx)
		return nil, nil, err
	}

	if c.Wait > 0 {
		select {
		case <-ctx.Done():
			repo.Stop(ctx)
			return nil, nil, ctx.Err()
		case <-time.After(c.Wait):
		}
	}
	return repo, handle, nil
}
