// internal/memif/export_test.go
package memif

// LastID returns the message id used by the most recent handshake.
func LastID(e *Engine) byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastID
}
