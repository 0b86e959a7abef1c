// internal/queue/amqp.go
package queue

import (
	"context"
	"encoding/json"

	"github.com/streadway/amqp"
)

// AMQPQueue publishes dispatch jobs to a durable RabbitMQ queue consumed by
// the vendor worker.
type AMQPQueue struct {
	ch   *amqp.Channel
	name string
}

func NewAMQPQueue(conn *amqp.Connection, name string) (*AMQPQueue, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	_, err = ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, err
	}
	return &AMQPQueue{ch: ch, name: name}, nil
}

func (q *AMQPQueue) Publish(ctx context.Context, job DispatchJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.ch.Publish(
		"",
		q.name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (q *AMQPQueue) Close() error {
	return q.ch.Close()
}
