package ledger

import "context"

// NotifyKind classifies a user-visible notification.
type NotifyKind string

const (
	NotifySuccess NotifyKind = "success"
	NotifyError   NotifyKind = "error"
)

// Saver persists a ledger snapshot and returns the persisted state as the
// store now sees it (the echo fed back through the reconciler). Retries and
// timeouts are the implementation's concern, not the ledger's.
type Saver interface {
	Save(ctx context.Context, assetID string, items []LineItem) ([]LineItem, error)
}

// Loader fetches the persisted snapshot for an asset.
type Loader interface {
	Load(ctx context.Context, assetID string) ([]LineItem, error)
}

// Notifier delivers fire-and-forget success/failure messages to the user.
type Notifier interface {
	Notify(kind NotifyKind, message string)
}
