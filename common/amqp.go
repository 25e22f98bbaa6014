package common

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"log"
	"sync"

	"github.com/streadway/amqp"
)

// ResultsExchange is the fanout exchange every finished run is published on.
const ResultsExchange = "pi_results"

func declareResultsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		ResultsExchange, // name
		"fanout",        // type
		true,            // durable
		false,           // auto-deleted
		false,           // internal
		false,           // no-wait
		nil,             // arguments
	)
}

func EncodeAMQPPacket(packet AMQPPacket) ([]byte, error) {
	var buffer bytes.Buffer

	if err := gob.NewEncoder(&buffer).Encode(packet); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

func ParseAMQPPacket(delivery *amqp.Delivery) (AMQPPacket, error) {
	var amqpPacket AMQPPacket

	decoder := gob.NewDecoder(bytes.NewBuffer(delivery.Body))
	if err := decoder.Decode(&amqpPacket); err != nil {
		return AMQPPacket{}, fmt.Errorf("decoding a result with gob: %w", err)
	}

	return amqpPacket, nil
}

type AMQPPublisher struct {
	amqpConn *amqp.Connection
	amqpChan *amqp.Channel
}

func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	var err error
	publisher := AMQPPublisher{}

	if publisher.amqpConn, err = amqp.Dial(url); err != nil {
		return nil, err
	}

	if publisher.amqpChan, err = publisher.amqpConn.Channel(); err != nil {
		_ = publisher.amqpConn.Close()
		return nil, err
	}

	if err = declareResultsExchange(publisher.amqpChan); err != nil {
		_ = publisher.amqpChan.Close()
		_ = publisher.amqpConn.Close()
		return nil, err
	}

	return &publisher, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, packet AMQPPacket) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := EncodeAMQPPacket(packet)
	if err != nil {
		return err
	}

	return p.amqpChan.Publish(
		ResultsExchange,
		"",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/octet-stream",
			Body:        body,
		})
}

func (p *AMQPPublisher) Close() error {
	if err := p.amqpChan.Close(); err != nil {
		_ = p.amqpConn.Close()
		return err
	}

	return p.amqpConn.Close()
}

type AMQPConsumer struct {
	amqpConn  *amqp.Connection
	amqpChan  *amqp.Channel
	amqpQueue amqp.Queue

	queueName    string
	consumerName string

	amqpConsumer <-chan amqp.Delivery
	callback     func(AMQPPacket) error
	wg           sync.WaitGroup
}

// NewAMQPConsumer binds an exclusive queue to the results exchange. Every
// decoded packet is handed to callback on a single goroutine.
func NewAMQPConsumer(url, queueName, consumerName string, callback func(AMQPPacket) error) (*AMQPConsumer, error) {
	var err error
	consumer := AMQPConsumer{
		callback: callback,

		queueName:    queueName,
		consumerName: consumerName,
	}

	if consumer.amqpConn, err = amqp.Dial(url); err != nil {
		return nil, err
	}

	if consumer.amqpChan, err = consumer.amqpConn.Channel(); err != nil {
		_ = consumer.amqpConn.Close()
		return nil, err
	}

	if err = declareResultsExchange(consumer.amqpChan); err != nil {
		_ = consumer.amqpChan.Close()
		_ = consumer.amqpConn.Close()
		return nil, err
	}

	if consumer.amqpQueue, err = consumer.amqpChan.QueueDeclare(
		queueName, // name
		false,     // durable
		false,     // delete when unused
		true,      // exclusive
		false,     // no-wait
		nil,       // arguments
	); err != nil {
		_ = consumer.amqpChan.Close()
		_ = consumer.amqpConn.Close()
		return nil, err
	}

	if err = consumer.amqpChan.QueueBind(
		consumer.amqpQueue.Name, // queue name
		"",                      // routing key
		ResultsExchange,         // exchange
		false,
		nil,
	); err != nil {
		_ = consumer.amqpChan.Close()
		_ = consumer.amqpConn.Close()
		return nil, err
	}

	return &consumer, nil
}

func (c *AMQPConsumer) Start() error {
	var err error

	if c.amqpConsumer, err = c.amqpChan.Consume(
		c.amqpQueue.Name, // queue
		c.consumerName,   // consumer
		true,             // auto-ack
		false,            // exclusive
		false,            // no-local
		false,            // no-wait
		nil,              // args
	); err != nil {
		return err
	}

	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		for delivery := range c.amqpConsumer {
			packet, err := ParseAMQPPacket(&delivery)
			if err != nil {
				log.Printf("dropping a delivery on %s: %s", c.queueName, err)
				continue
			}

			if err = c.callback(packet); err != nil {
				log.Printf("handling run %s failed: %s", packet.RunID, err)
			}
		}
	}()

	return nil
}

func (c *AMQPConsumer) Stop() error {
	return c.amqpChan.Cancel(c.consumerName, false)
}

func (c *AMQPConsumer) Wait() {
	c.wg.Wait()
}

func (c *AMQPConsumer) Close() error {
	var err error

	if err = c.amqpChan.Close(); err != nil {
		return err
	}

	if err = c.amqpConn.Close(); err != nil {
		return err
	}

	return nil
}
