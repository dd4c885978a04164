package cli

import (
	"AI-Content-Creator-Backend/internal/form"
	"fmt"
	"io"
	"sync"
)

// TerminalHost stands in for the Telegram client when the form runs in a
// terminal.
type TerminalHost struct {
	UserID *int64
	ChatID *int64
	Out    io.Writer

	once   sync.Once
	closed chan struct{}
}

func NewTerminalHost(out io.Writer, userID, chatID *int64) *TerminalHost {
	return &TerminalHost{UserID: userID, ChatID: chatID, Out: out, closed: make(chan struct{})}
}

func (h *TerminalHost) Identity() (form.Identity, bool) {
	if h.UserID == nil && h.ChatID == nil {
		return form.Identity{}, false
	}
	return form.Identity{UserID: h.UserID, ChatID: h.ChatID}, true
}

func (h *TerminalHost) Close() {
	h.once.Do(func() {
		fmt.Fprintln(h.Out, "تم إغلاق النموذج.")
		close(h.closed)
	})
}

func (h *TerminalHost) OpenPayment(url string) {
	fmt.Fprintf(h.Out, "رابط الدفع: %s\n", url)
}

// Done is closed once Close has been called.
func (h *TerminalHost) Done() <-chan struct{} {
	return h.closed
}
