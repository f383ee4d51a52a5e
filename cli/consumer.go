package cli

import (
	"bytes"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hawkset.claimhawk.org/common"
	"hawkset.claimhawk.org/db"
	"hawkset.claimhawk.org/export"
	"hawkset.claimhawk.org/queue"
	"hawkset.claimhawk.org/storage"
)

func init() {
	RootCmd.AddCommand(consumerCmd)
	consumerCmd.Flags().String("consumer-tag", "hawkset-consumer", "AMQP consumer tag")
}

var consumerCmd = &cobra.Command{
	Use:   "consumer",
	Short: "run the asynchronous export-job consumer",
	Long: `Drain the export-job queue: for each job, load the dataset's samples,
build the annotation document and upload it to the configured S3 bucket.
Failed jobs are requeued.`,
	Run: runConsumer,
}

func runConsumer(cmd *cobra.Command, args []string) {
	config := loadConfig()
	tag, _ := cmd.Flags().GetString("consumer-tag")

	store, err := db.NewCouchDBService(config)
	if err != nil {
		common.Logger.Fatal("Failed to initialize CouchDB service: ", err)
	}
	defer store.Close()

	s3Client, err := storage.NewS3Client(config.S3Endpoint, config.S3AccessKey, config.S3SecretKey)
	if err != nil {
		common.Logger.Fatal("Failed to initialize S3 client: ", err)
	}
	artifacts := storage.NewArtifactStore(s3Client, config.S3Bucket)

	rabbit, err := queue.NewRabbitMQService(config)
	if err != nil {
		common.Logger.Fatal("Failed to initialize RabbitMQ service: ", err)
	}
	defer rabbit.Close()

	deliveries, err := rabbit.ConsumeExportJobs(tag)
	if err != nil {
		common.Logger.Fatal("Failed to start consuming: ", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	common.Logger.Info("Export consumer started, queue ", config.QueueName)

	for {
		select {
		case <-quit:
			common.Logger.Info("Export consumer shutting down")
			return
		case delivery, ok := <-deliveries:
			if !ok {
				common.Logger.Error("Delivery channel closed, exiting")
				return
			}

			job, err := queue.DecodeExportJob(delivery.Body)
			if err != nil {
				common.Logger.Error("Discarding malformed export job: ", err)
				delivery.Nack(false, false)
				continue
			}

			if err := processExportJob(context.Background(), store, artifacts, job); err != nil {
				common.Logger.WithField("dataset", job.Dataset).Error("Export job failed, requeueing: ", err)
				delivery.Nack(false, true)
				continue
			}
			delivery.Ack(false)
		}
	}
}

// processExportJob builds the annotation artifact for one job and uploads
// it under the job's artifact key.
func processExportJob(ctx context.Context, store db.DatasetStore, artifacts *storage.ArtifactStore, job queue.ExportJob) error {
	samples, err := store.GetSamples(job.Dataset, 0)
	if err != nil {
		return err
	}

	annotations, err := export.BuildAnnotations(ctx, job.Dataset, samples)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, annotations); err != nil {
		return err
	}

	if err := artifacts.Upload(ctx, job.ArtifactKey, buf.Bytes()); err != nil {
		return err
	}

	common.Logger.WithField("dataset", job.Dataset).
		WithField("key", job.ArtifactKey).
		Info("Export job completed with ", len(annotations), " annotations")
	return nil
}
