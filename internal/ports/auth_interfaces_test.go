package ports_test

import (
	"testing"

	"github.com/campushub/eventhub/internal/mocks"
	authmocks "github.com/campushub/eventhub/internal/mocks/auth"
	"github.com/campushub/eventhub/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.AuthProvider = (*authmocks.MockAuthProvider)(nil)
	var _ ports.TokenCodec = (*authmocks.FakeTokenCodec)(nil)
	var _ ports.Notifier = (*authmocks.RecordingNotifier)(nil)
	var _ ports.MailSender = (*mocks.MockMailSender)(nil)
	var _ ports.MailQueue = (*mocks.MockMailQueue)(nil)
}
