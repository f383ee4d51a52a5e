package common

import (
	"fmt"
	"time"
)

// Document type markers stored in the doc_type field of every CouchDB
// document, used by Mango selectors to separate datasets from samples.
const (
	DocTypeDataset = "dataset"
	DocTypeSample  = "sample"
)

// Conversation roles in exported training records.
const (
	RoleHuman = "human"
	RoleGPT   = "gpt"
)

// ServiceConfig holds the complete runtime configuration for the hawkset
// service, populated from viper (flags, environment, config file).
type ServiceConfig struct {
	Port          string            `json:"port"`
	CouchDBURL    string            `json:"couchdb_url"`
	DatabaseName  string            `json:"database_name"`
	RedisAddr     string            `json:"redis_addr"`
	RedisPassword string            `json:"redis_password"`
	RabbitMQURL   string            `json:"rabbitmq_url"`
	QueueName     string            `json:"queue_name"`
	JWTSecret     string            `json:"jwt_secret"`
	S3Endpoint    string            `json:"s3_endpoint"`
	S3Bucket      string            `json:"s3_bucket"`
	S3AccessKey   string            `json:"s3_access_key"`
	S3SecretKey   string            `json:"s3_secret_key"`
	Users         map[string]string `json:"-"` // username -> bcrypt hash
}

// Dataset is the metadata document for one named collection of samples.
// Name doubles as the lookup key; creation is idempotent by name.
type Dataset struct {
	ID          string    `json:"_id,omitempty"`
	Rev         string    `json:"_rev,omitempty"`
	DocType     string    `json:"doc_type"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SampleCount int       `json:"sample_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Conversation is one turn of the exported conversation pair.
type Conversation struct {
	From  string `json:"from"`
	Value string `json:"value"`
}

// Sample is one annotated training example: a screenshot, the task the
// operator described, an optional reasoning thought, and the compiled action
// command. The conversation pair is materialized at write time so exports
// are a plain read.
type Sample struct {
	ID            string            `json:"_id,omitempty"`
	Rev           string            `json:"_rev,omitempty"`
	DocType       string            `json:"doc_type"`
	DatasetName   string            `json:"dataset_name"`
	ImageData     string            `json:"image_data"` // base64-encoded screenshot
	Task          string            `json:"task"`
	Thought       string            `json:"thought,omitempty"`
	Action        string            `json:"action"`
	ActionParams  map[string]string `json:"action_params,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	Conversations []Conversation    `json:"conversations"`
}

// DatasetStats summarizes a dataset for listings and the stats endpoint.
type DatasetStats struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SampleCount int       `json:"sample_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// BuildConversations materializes the training conversation pair for one
// sample. The human prompt and the gpt answer reproduce the exact phrasing
// existing datasets were built with, so the strings here are load-bearing:
// changing them breaks compatibility with previously exported annotations.
func BuildConversations(task, thought, action string) []Conversation {
	human := fmt.Sprintf("<image>\nYou are a GUI agent. The task is: %s\n\nWhat is the next action?", task)

	answer := fmt.Sprintf("Action: %s", action)
	if thought != "" {
		answer = fmt.Sprintf("Thought: %s\nAction: %s", thought, action)
	}

	return []Conversation{
		{From: RoleHuman, Value: human},
		{From: RoleGPT, Value: answer},
	}
}
