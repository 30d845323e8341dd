// Package websocket is a client-side implementation of the WebSocket protocol
// (RFC 6455). It is built around an incremental, zero-copy frame parser and a
// ring-buffered connection that hands received payloads to the caller
// without copying them.
//
// Unsupported on purpose: server-side behavior, "wss://" (TLS), HTTP
// redirects and proxies, and the "permessage-deflate" extension (RFC 7692).
// A caller that asks for compression via Config.EnableCompression gets
// ErrInvalidArgs back from Connect rather than a silently-ignored option.
//
// A Conn is not safe for concurrent use. Callers that need to send from one
// goroutine while receiving on another must serialize access themselves.
package websocket
