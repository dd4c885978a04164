package form

// Identity is what the embedding Telegram client knows about the user.
// Either id may be absent: chat is only present when opened from a chat.
type Identity struct {
	UserID *int64
	ChatID *int64
}

// Host is the embedding application. Controllers accept a nil Host.
type Host interface {
	Identity() (Identity, bool)
	Close()
	OpenPayment(url string)
}
