// Package serial opens the modem's tty for the loader.
//
// The line is configured raw, 8N1, 9600 baud by default. Two profiles are
// provided: ConnectProfile waits up to 2 s for the line to become writable
// after the modem was woken, PollProfile opens the long-lived channel used
// for memory debug after boot.
//
// Port.WaitReadable uses poll(2) on the descriptor, so a caller can bound
// the wait for the next chunk without putting the line in non-blocking mode.
package serial
