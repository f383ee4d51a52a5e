package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"hawkset.claimhawk.org/common"
	"hawkset.claimhawk.org/db"
)

// fakeStore is an in-memory db.DatasetStore for handler tests.
type fakeStore struct {
	datasets map[string]*common.Dataset
	samples  map[string]*common.Sample
	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		datasets: make(map[string]*common.Dataset),
		samples:  make(map[string]*common.Sample),
	}
}

func notFoundErr(reason string) error {
	return &db.CouchDBError{StatusCode: http.StatusNotFound, ErrorType: "not_found", Reason: reason}
}

func (f *fakeStore) CreateDataset(name, description string) (*common.Dataset, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if existing, ok := f.datasets[name]; ok {
		return existing, nil
	}
	dataset := &common.Dataset{
		ID:          "dataset:" + name,
		DocType:     common.DocTypeDataset,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	f.datasets[name] = dataset
	return dataset, nil
}

func (f *fakeStore) GetDataset(name string) (*common.Dataset, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	dataset, ok := f.datasets[name]
	if !ok {
		return nil, notFoundErr("dataset " + name + " not found")
	}
	return dataset, nil
}

func (f *fakeStore) ListDatasets() ([]common.Dataset, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]common.Dataset, 0, len(f.datasets))
	for _, d := range f.datasets {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) DeleteDataset(name string) error {
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.datasets[name]; !ok {
		return notFoundErr("dataset " + name + " not found")
	}
	delete(f.datasets, name)
	for id, sample := range f.samples {
		if sample.DatasetName == name {
			delete(f.samples, id)
		}
	}
	return nil
}

func (f *fakeStore) AddSample(datasetName string, sample common.Sample) (string, error) {
	if f.failWith != nil {
		return "", f.failWith
	}
	if _, ok := f.datasets[datasetName]; !ok {
		if _, err := f.CreateDataset(datasetName, ""); err != nil {
			return "", err
		}
	}

	sample.ID = "sample:" + uuid.New().String()
	sample.DocType = common.DocTypeSample
	sample.DatasetName = datasetName
	if sample.CreatedAt.IsZero() {
		sample.CreatedAt = time.Now().UTC()
	}
	if len(sample.Conversations) == 0 {
		sample.Conversations = common.BuildConversations(sample.Task, sample.Thought, sample.Action)
	}
	f.samples[sample.ID] = &sample
	f.datasets[datasetName].SampleCount++
	return sample.ID, nil
}

func (f *fakeStore) GetSamples(datasetName string, limit int) ([]common.Sample, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]common.Sample, 0)
	for _, s := range f.samples {
		if s.DatasetName == datasetName {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) DeleteSample(id string) error {
	if f.failWith != nil {
		return f.failWith
	}
	sample, ok := f.samples[id]
	if !ok {
		return notFoundErr("sample " + id + " not found")
	}
	delete(f.samples, id)
	if dataset, ok := f.datasets[sample.DatasetName]; ok && dataset.SampleCount > 0 {
		dataset.SampleCount--
	}
	return nil
}

func (f *fakeStore) Stats(name string) (*common.DatasetStats, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	dataset, ok := f.datasets[name]
	if !ok {
		return nil, notFoundErr("dataset " + name + " not found")
	}
	return &common.DatasetStats{
		Name:        dataset.Name,
		Description: dataset.Description,
		SampleCount: dataset.SampleCount,
		CreatedAt:   dataset.CreatedAt,
	}, nil
}

func (f *fakeStore) Close() error { return nil }

func sampleFixture() common.Sample {
	return common.Sample{
		Task:      "Log into the portal",
		Thought:   "The login button is in the top right",
		Action:    "click(point='<point>1710 100</point>')",
		ImageData: "aW1hZ2U=",
	}
}
