// Critical sections shared by the foreground loop and interrupt handlers
package core

// Token proves that the holder is inside a critical section.
// Only Enter and WithExclusive create one; code that already holds a Token
// passes it down instead of entering again.
type Token struct {
	state irqState
}

// Enter suspends interrupt delivery and returns the proof of exclusion.
// Every Enter must be paired with exactly one Exit on the same context.
func Enter() Token {
	return Token{state: disableInterrupts()}
}

// Exit resumes interrupt delivery. Interrupts raised while the section was
// held are delivered immediately afterwards.
func Exit(tok Token) {
	restoreInterrupts(tok.state)
}

// WithExclusive runs f with interrupts suspended.
// Keep f short: it bounds the interrupt latency of every source.
func WithExclusive(f func(tok Token)) {
	tok := Enter()
	defer Exit(tok)
	f(tok)
}

// Exclusive is WithExclusive for closures that produce a value
func Exclusive[R any](f func(tok Token) R) R {
	tok := Enter()
	defer Exit(tok)
	return f(tok)
}
