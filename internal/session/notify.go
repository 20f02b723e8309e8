package session

import (
	"github.com/rs/zerolog"

	"github.com/mpancino/myassetplace/internal/ledger"
)

// LogNotifier writes user notifications to the application log. The API is
// request/response; there is no push channel to deliver toasts on, so the
// log is the delivery sink.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Notify(kind ledger.NotifyKind, message string) {
	switch kind {
	case ledger.NotifyError:
		n.Log.Error().Str("kind", string(kind)).Msg(message)
	default:
		n.Log.Info().Str("kind", string(kind)).Msg(message)
	}
}
