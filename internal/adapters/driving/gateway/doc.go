// Package gateway exposes the answer engine and the chat router over HTTP
// using fiber. Transports such as a Telegram webhook relay post updates to
// /v1/messages and /v1/voice and deliver the returned reply.
package gateway
