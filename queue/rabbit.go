// Package queue publishes and consumes dataset export jobs over RabbitMQ.
// The API server publishes a job when a client requests an asynchronous
// export; the consumer process builds the artifact and uploads it.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"hawkset.claimhawk.org/common"
)

// ExportJob describes one requested dataset export.
type ExportJob struct {
	// Dataset is the name of the dataset to export.
	Dataset string `json:"dataset"`
	// ArtifactKey is the object key the consumer uploads the result under.
	ArtifactKey string `json:"artifact_key"`
	// RequestedBy is the username of the account that requested the export.
	RequestedBy string `json:"requested_by"`
	// RequestedAt is when the export was requested.
	RequestedAt time.Time `json:"requested_at"`
}

// JobPublisher publishes export jobs for asynchronous processing.
type JobPublisher interface {
	// PublishExportJob enqueues one export job.
	PublishExportJob(job ExportJob) error

	// Close closes the connection to the message queue.
	Close() error
}

// RabbitMQService manages a connection and channel to a RabbitMQ server
// and moves export jobs through a single durable queue.
type RabbitMQService struct {
	connection AMQPConnection
	channel    AMQPChannel
	queueName  string
}

// NewRabbitMQService connects to RabbitMQ, opens a channel and declares
// the durable export queue.
func NewRabbitMQService(config common.ServiceConfig) (*RabbitMQService, error) {
	dialer := &RealAMQPDialer{}
	return NewRabbitMQServiceWithDialer(config, dialer)
}

// NewRabbitMQServiceWithDialer allows injecting a custom dialer for testing.
func NewRabbitMQServiceWithDialer(config common.ServiceConfig, dialer AMQPDialer) (*RabbitMQService, error) {
	conn, err := dialer.Dial(config.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// Durable so pending export jobs survive broker restarts.
	_, err = ch.QueueDeclare(
		config.QueueName, // name
		true,             // durable
		false,            // delete when unused
		false,            // exclusive
		false,            // no-wait
		nil,              // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &RabbitMQService{
		connection: conn,
		channel:    ch,
		queueName:  config.QueueName,
	}, nil
}

// PublishExportJob serializes the job to JSON and publishes it to the
// export queue via the default exchange.
func (r *RabbitMQService) PublishExportJob(job ExportJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal export job: %w", err)
	}

	err = r.channel.Publish(
		"",          // exchange (empty string means default exchange)
		r.queueName, // routing key (queue name)
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish export job: %w", err)
	}

	common.Logger.WithField("dataset", job.Dataset).Info("Published export job")
	return nil
}

// ConsumeExportJobs starts delivering export jobs from the queue. Messages
// are not auto-acked; callers ack after the artifact is uploaded so failed
// exports are redelivered.
func (r *RabbitMQService) ConsumeExportJobs(consumer string) (<-chan amqp.Delivery, error) {
	deliveries, err := r.channel.Consume(
		r.queueName, // queue
		consumer,    // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}
	return deliveries, nil
}

// DecodeExportJob parses a delivery body back into an ExportJob.
func DecodeExportJob(body []byte) (ExportJob, error) {
	var job ExportJob
	if err := json.Unmarshal(body, &job); err != nil {
		return ExportJob{}, fmt.Errorf("failed to decode export job: %w", err)
	}
	return job, nil
}

// Close closes the RabbitMQ channel and connection, tolerating nil fields.
func (r *RabbitMQService) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.connection != nil {
		r.connection.Close()
	}
	return nil
}
