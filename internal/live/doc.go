// Package live delivers named push events from the backend to in-process
// handlers.
//
// A Hub owns one shared Transport for the whole process. Subscribers register
// per event name and get back an idempotent unsubscribe func. Unsubscribing
// only removes the handler; the connection stays up until Hub.Close.
//
// Two transports exist:
//
//   - SocketTransport speaks Engine.IO v4 / Socket.IO over a websocket. It
//     joins the default namespace, answers pings and decodes event packets
//     of the form 42["name",payload].
//   - AMQPTransport binds a private queue to a topic exchange with one
//     routing key per event name and treats each message body as a payload.
//
// NewTransport chooses between them by URL scheme, and ResolveEndpoint picks
// the URL from an explicit value, the configured one, or the API origin.
//
// Neither transport reconnects. When the connection fails Run returns, the
// hub logs the error and the catalog keeps serving its last snapshot.
// Handlers run on the transport's goroutine, so events sharing a name arrive
// in the order the transport delivered them.
package live
