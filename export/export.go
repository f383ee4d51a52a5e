// Package export turns stored samples into the annotation JSON consumed by
// training pipelines. Each sample becomes one annotation record with a
// deterministic ID and a two-turn conversation.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"hawkset.claimhawk.org/common"
)

// Annotation is one record of an exported dataset.
type Annotation struct {
	ID            string                `json:"id"`
	ImageData     string                `json:"image_data,omitempty"`
	Conversations []common.Conversation `json:"conversations"`
}

// annotationID builds the stable record identifier. The index reflects the
// sample's position in the export, oldest first, so re-exporting an
// unchanged dataset yields the same IDs.
func annotationID(dataset string, index int, sampleID string) string {
	return fmt.Sprintf("%s_%d_%s", dataset, index, sampleID)
}

// BuildAnnotations converts samples into annotation records. Samples are
// ordered oldest first before indexing. Samples persisted without
// conversations get them rebuilt from the stored task and action.
func BuildAnnotations(ctx context.Context, datasetName string, samples []common.Sample) ([]Annotation, error) {
	ordered := make([]common.Sample, len(samples))
	copy(ordered, samples)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	annotations := make([]Annotation, len(ordered))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, sample := range ordered {
		i, sample := i, sample
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			conversations := sample.Conversations
			if len(conversations) == 0 {
				conversations = common.BuildConversations(sample.Task, sample.Thought, sample.Action)
			}

			annotations[i] = Annotation{
				ID:            annotationID(datasetName, i, sample.ID),
				ImageData:     sample.ImageData,
				Conversations: conversations,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return annotations, nil
}

// WriteJSON writes annotations as an indented JSON array. An empty slice
// still produces a valid empty array, not null.
func WriteJSON(w io.Writer, annotations []Annotation) error {
	if annotations == nil {
		annotations = []Annotation{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(annotations); err != nil {
		return fmt.Errorf("failed to encode annotations: %w", err)
	}
	return nil
}
