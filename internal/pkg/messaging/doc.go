// Package messaging is a broker-agnostic publish/consume client.
//
// NATS (queue groups), Kafka (consumer groups) and NSQ (channels) sit behind
// the same Messaging interface. Consume blocks until its context is canceled
// and, with auto ack, acks a message when the handler returns nil and
// nacks it for redelivery otherwise.
package messaging
