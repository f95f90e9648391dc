/*
Package rabbitmq provides a RabbitMQ delivery sink for the event fan-out.
It publishes envelopes to a durable topic exchange with the binding name as
the routing key, and includes an auto-reconnecting publisher.
*/
package rabbitmq
