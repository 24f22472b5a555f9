package gumbi

// Transport is the byte channel a Board talks through.
// Read blocks until n bytes are available and only returns
// fewer on error. Write hands every byte of p to the channel.
//
// Implementations are not safe for concurrent use.
type Transport interface {
	Read(n int) ([]byte, error)
	Write(p []byte) error
	Close() error
}

// Session is the set of primitives capabilities are built upon.
// *Board implements it.
type Session interface {
	Read(n int) ([]byte, error)
	Write(data []byte) error
	ReadAck() error
	ReadText() (string, error)
	SetMode(m Mode) error
}
