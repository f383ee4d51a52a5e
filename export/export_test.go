package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hawkset.claimhawk.org/common"
)

func testSamples(count int) []common.Sample {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	samples := make([]common.Sample, count)
	for i := range samples {
		samples[i] = common.Sample{
			ID:          fmt.Sprintf("sample:%04d", i),
			DatasetName: "login-flows",
			ImageData:   "aW1hZ2U=",
			Task:        "Log into the portal",
			Thought:     "The login button is in the top right",
			Action:      "click(point='<point>1710 100</point>')",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		samples[i].Conversations = common.BuildConversations(
			samples[i].Task, samples[i].Thought, samples[i].Action)
	}
	return samples
}

func TestBuildAnnotations_IDsAndOrder(t *testing.T) {
	samples := testSamples(3)
	// Shuffle: BuildAnnotations must order by creation time, oldest first.
	shuffled := []common.Sample{samples[2], samples[0], samples[1]}

	annotations, err := BuildAnnotations(context.Background(), "login-flows", shuffled)
	require.NoError(t, err)
	require.Len(t, annotations, 3)

	assert.Equal(t, "login-flows_0_sample:0000", annotations[0].ID)
	assert.Equal(t, "login-flows_1_sample:0001", annotations[1].ID)
	assert.Equal(t, "login-flows_2_sample:0002", annotations[2].ID)
}

func TestBuildAnnotations_Conversations(t *testing.T) {
	samples := testSamples(1)

	annotations, err := BuildAnnotations(context.Background(), "login-flows", samples)
	require.NoError(t, err)

	require.Len(t, annotations[0].Conversations, 2)
	assert.Equal(t, common.RoleHuman, annotations[0].Conversations[0].From)
	assert.Contains(t, annotations[0].Conversations[0].Value, "Log into the portal")
	assert.Equal(t, common.RoleGPT, annotations[0].Conversations[1].From)
	assert.Equal(t,
		"Thought: The login button is in the top right\nAction: click(point='<point>1710 100</point>')",
		annotations[0].Conversations[1].Value)
}

func TestBuildAnnotations_RebuildsMissingConversations(t *testing.T) {
	samples := testSamples(1)
	samples[0].Conversations = nil

	annotations, err := BuildAnnotations(context.Background(), "login-flows", samples)
	require.NoError(t, err)
	require.Len(t, annotations[0].Conversations, 2)
}

func TestBuildAnnotations_Deterministic(t *testing.T) {
	samples := testSamples(25)

	first, err := BuildAnnotations(context.Background(), "login-flows", samples)
	require.NoError(t, err)
	second, err := BuildAnnotations(context.Background(), "login-flows", samples)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildAnnotations_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildAnnotations(ctx, "login-flows", testSamples(50))
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	annotations, err := BuildAnnotations(context.Background(), "login-flows", testSamples(2))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, annotations))

	var decoded []Annotation
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, annotations, decoded)
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}
