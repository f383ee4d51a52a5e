// Package db provides CouchDB-backed persistence for datasets and training
// samples using the Kivik CouchDB driver.
//
// Document Model:
//
//	Two document shapes share one database, distinguished by a doc_type
//	field ("dataset" / "sample") that Mango selectors filter on:
//	- Dataset metadata documents keyed "dataset:<name>", so the dataset name
//	  is a direct primary-key lookup.
//	- Sample documents keyed "sample:<uuid>", carrying the dataset name for
//	  selector queries plus the full annotation payload (base64 screenshot,
//	  task, thought, action, pre-built conversation pair).
//
// Consistency:
//
//	CouchDB's MVCC model handles concurrent writers through document
//	revisions. Sample-count maintenance re-reads the dataset document before
//	each increment; a lost update between concurrent writers surfaces as a
//	409 conflict the caller can retry.
package db

import (
	"context"
	"fmt"
	"sort"
	"time"

	kivik "github.com/go-kivik/kivik/v4"
	_ "github.com/go-kivik/kivik/v4/couchdb" // The CouchDB driver

	"github.com/google/uuid"

	"hawkset.claimhawk.org/common"
)

// DatasetStore defines the persistence operations the API layer depends on.
// The interface exists so handlers can be tested against an in-memory fake.
type DatasetStore interface {
	// CreateDataset creates a dataset by name; creating an existing name is
	// a no-op that returns the stored document.
	CreateDataset(name, description string) (*common.Dataset, error)

	// GetDataset retrieves dataset metadata by name.
	GetDataset(name string) (*common.Dataset, error)

	// ListDatasets returns all datasets, newest first.
	ListDatasets() ([]common.Dataset, error)

	// DeleteDataset removes a dataset and all of its samples.
	DeleteDataset(name string) error

	// AddSample stores a sample under the named dataset, creating the
	// dataset on first use, and returns the sample ID.
	AddSample(datasetName string, sample common.Sample) (string, error)

	// GetSamples returns up to limit samples of a dataset, newest first.
	// limit <= 0 means no limit.
	GetSamples(datasetName string, limit int) ([]common.Sample, error)

	// DeleteSample removes one sample by ID and decrements its dataset's
	// sample count.
	DeleteSample(id string) error

	// Stats summarizes a dataset; returns a not-found error for unknown
	// names.
	Stats(name string) (*common.DatasetStats, error)

	// Close closes the database connection.
	Close() error
}

// CouchDBService implements DatasetStore on a Kivik CouchDB client.
type CouchDBService struct {
	client   *kivik.Client
	database *kivik.DB
	dbName   string
}

var _ DatasetStore = (*CouchDBService)(nil)

// NewCouchDBService connects to CouchDB, creates the configured database if
// it does not exist, and returns a ready store.
func NewCouchDBService(config common.ServiceConfig) (*CouchDBService, error) {
	client, err := kivik.New("couch", config.CouchDBURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to CouchDB: %w", err)
	}

	ctx := context.Background()

	exists, err := client.DBExists(ctx, config.DatabaseName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if database exists: %w", err)
	}
	if !exists {
		if err := client.CreateDB(ctx, config.DatabaseName); err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	return &CouchDBService{
		client:   client,
		database: client.DB(config.DatabaseName),
		dbName:   config.DatabaseName,
	}, nil
}

func datasetDocID(name string) string { return "dataset:" + name }

func couchError(err error, errorType string) error {
	if statusCode := kivik.HTTPStatus(err); statusCode != 0 {
		return &CouchDBError{
			StatusCode: statusCode,
			ErrorType:  errorType,
			Reason:     err.Error(),
		}
	}
	return fmt.Errorf("%s: %w", errorType, err)
}

// CreateDataset creates a dataset metadata document. Creation is idempotent
// by name: if the dataset already exists the stored document is returned
// unchanged, mirroring the behavior operators expect from re-submitting the
// creation form.
func (c *CouchDBService) CreateDataset(name, description string) (*common.Dataset, error) {
	if existing, err := c.GetDataset(name); err == nil {
		return existing, nil
	} else if !IsNotFound(err) {
		return nil, err
	}

	dataset := common.Dataset{
		ID:          datasetDocID(name),
		DocType:     common.DocTypeDataset,
		Name:        name,
		Description: description,
		SampleCount: 0,
		CreatedAt:   time.Now().UTC(),
	}

	rev, err := c.database.Put(context.Background(), dataset.ID, dataset)
	if err != nil {
		return nil, couchError(err, "create_dataset_failed")
	}
	dataset.Rev = rev

	return &dataset, nil
}

// GetDataset retrieves a dataset document by name.
func (c *CouchDBService) GetDataset(name string) (*common.Dataset, error) {
	row := c.database.Get(context.Background(), datasetDocID(name))
	if row.Err() != nil {
		return nil, couchError(row.Err(), "get_dataset_failed")
	}

	var dataset common.Dataset
	if err := row.ScanDoc(&dataset); err != nil {
		return nil, fmt.Errorf("failed to scan dataset document: %w", err)
	}
	return &dataset, nil
}

// ListDatasets returns all dataset documents, newest first.
func (c *CouchDBService) ListDatasets() ([]common.Dataset, error) {
	selector := map[string]interface{}{
		"doc_type": common.DocTypeDataset,
	}

	rows := c.database.Find(context.Background(), map[string]interface{}{"selector": selector})
	defer rows.Close()

	var datasets []common.Dataset
	for rows.Next() {
		var dataset common.Dataset
		if err := rows.ScanDoc(&dataset); err != nil {
			return nil, fmt.Errorf("failed to scan dataset document: %w", err)
		}
		datasets = append(datasets, dataset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating datasets: %w", err)
	}

	sort.Slice(datasets, func(i, j int) bool {
		return datasets[i].CreatedAt.After(datasets[j].CreatedAt)
	})

	return datasets, nil
}

// DeleteDataset removes a dataset document and every sample that belongs to
// it. Samples are removed first so a failure partway leaves the dataset
// visible rather than orphaning its samples.
func (c *CouchDBService) DeleteDataset(name string) error {
	dataset, err := c.GetDataset(name)
	if err != nil {
		return err
	}

	samples, err := c.GetSamples(name, 0)
	if err != nil {
		return err
	}

	ctx := context.Background()
	for _, sample := range samples {
		if _, err := c.database.Delete(ctx, sample.ID, sample.Rev); err != nil {
			return couchError(err, "delete_sample_failed")
		}
	}

	if _, err := c.database.Delete(ctx, dataset.ID, dataset.Rev); err != nil {
		return couchError(err, "delete_dataset_failed")
	}
	return nil
}

// AddSample stores one annotated sample. The dataset is created on first use
// (matching the original annotation workflow, where picking a fresh dataset
// name implicitly creates it), the sample is stamped and assigned a UUID,
// and the dataset's sample count is incremented.
func (c *CouchDBService) AddSample(datasetName string, sample common.Sample) (string, error) {
	dataset, err := c.CreateDataset(datasetName, "")
	if err != nil {
		return "", err
	}

	sample.ID = "sample:" + uuid.NewString()
	sample.Rev = ""
	sample.DocType = common.DocTypeSample
	sample.DatasetName = datasetName
	if sample.CreatedAt.IsZero() {
		sample.CreatedAt = time.Now().UTC()
	}
	if len(sample.Conversations) == 0 {
		sample.Conversations = common.BuildConversations(sample.Task, sample.Thought, sample.Action)
	}

	ctx := context.Background()
	if _, err := c.database.Put(ctx, sample.ID, sample); err != nil {
		return "", couchError(err, "add_sample_failed")
	}

	dataset.SampleCount++
	if _, err := c.database.Put(ctx, dataset.ID, dataset); err != nil {
		return "", couchError(err, "update_sample_count_failed")
	}

	common.Logger.WithFields(map[string]interface{}{
		"dataset": datasetName,
		"sample":  sample.ID,
	}).Info("sample added")

	return sample.ID, nil
}

// GetSamples returns samples of a dataset, newest first. limit <= 0 returns
// every sample (used by export and cascade deletion).
func (c *CouchDBService) GetSamples(datasetName string, limit int) ([]common.Sample, error) {
	selector := map[string]interface{}{
		"doc_type":     common.DocTypeSample,
		"dataset_name": datasetName,
	}

	rows := c.database.Find(context.Background(), map[string]interface{}{"selector": selector})
	defer rows.Close()

	var samples []common.Sample
	for rows.Next() {
		var sample common.Sample
		if err := rows.ScanDoc(&sample); err != nil {
			return nil, fmt.Errorf("failed to scan sample document: %w", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating samples: %w", err)
	}

	sort.Slice(samples, func(i, j int) bool {
		return samples[i].CreatedAt.After(samples[j].CreatedAt)
	})

	if limit > 0 && len(samples) > limit {
		samples = samples[:limit]
	}
	return samples, nil
}

// DeleteSample removes one sample and decrements its dataset's count. A
// missing parent dataset is tolerated: the sample still gets removed.
func (c *CouchDBService) DeleteSample(id string) error {
	ctx := context.Background()

	row := c.database.Get(ctx, id)
	if row.Err() != nil {
		return couchError(row.Err(), "get_sample_failed")
	}

	var sample common.Sample
	if err := row.ScanDoc(&sample); err != nil {
		return fmt.Errorf("failed to scan sample document: %w", err)
	}

	if _, err := c.database.Delete(ctx, sample.ID, sample.Rev); err != nil {
		return couchError(err, "delete_sample_failed")
	}

	dataset, err := c.GetDataset(sample.DatasetName)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return err
	}
	if dataset.SampleCount > 0 {
		dataset.SampleCount--
	}
	if _, err := c.database.Put(ctx, dataset.ID, dataset); err != nil {
		return couchError(err, "update_sample_count_failed")
	}
	return nil
}

// Stats summarizes one dataset for listings and cache population.
func (c *CouchDBService) Stats(name string) (*common.DatasetStats, error) {
	dataset, err := c.GetDataset(name)
	if err != nil {
		return nil, err
	}
	return &common.DatasetStats{
		Name:        dataset.Name,
		Description: dataset.Description,
		SampleCount: dataset.SampleCount,
		CreatedAt:   dataset.CreatedAt,
	}, nil
}

// Close closes the underlying CouchDB client connection.
func (c *CouchDBService) Close() error {
	return c.client.Close()
}
