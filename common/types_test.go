package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildConversations validates the exact prompt phrasing of the
// conversation pair, with and without a thought.
func TestBuildConversations(t *testing.T) {
	t.Run("WithThought", func(t *testing.T) {
		conv := BuildConversations(
			"Click on Chrome icon in dock",
			"Chrome is in the right dock at x=1710, y=100",
			"click(point='<point>1710 100</point>')",
		)
		require.Len(t, conv, 2)

		assert.Equal(t, RoleHuman, conv[0].From)
		assert.Equal(t,
			"<image>\nYou are a GUI agent. The task is: Click on Chrome icon in dock\n\nWhat is the next action?",
			conv[0].Value)

		assert.Equal(t, RoleGPT, conv[1].From)
		assert.Equal(t,
			"Thought: Chrome is in the right dock at x=1710, y=100\nAction: click(point='<point>1710 100</point>')",
			conv[1].Value)
	})

	t.Run("WithoutThought", func(t *testing.T) {
		conv := BuildConversations("Submit URL", "", "hotkey(key='enter')")
		require.Len(t, conv, 2)
		assert.Equal(t, "Action: hotkey(key='enter')", conv[1].Value)
	})
}

// TestSample_JSON validates document round-tripping including the CouchDB
// id/rev fields and the doc_type marker.
func TestSample_JSON(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)

	sample := Sample{
		ID:          "sample-123",
		DocType:     DocTypeSample,
		DatasetName: "claimhawk_dataset",
		ImageData:   "aGVsbG8=",
		Task:        "Open Chrome browser",
		Thought:     "Chrome icon is in the dock",
		Action:      "click(point='<point>1710 100</point>')",
		ActionParams: map[string]string{"x": "1710", "y": "100"},
		CreatedAt:   now,
		Conversations: BuildConversations("Open Chrome browser", "Chrome icon is in the dock",
			"click(point='<point>1710 100</point>')"),
	}

	data, err := json.Marshal(sample)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"doc_type":"sample"`)
	assert.NotContains(t, string(data), `"_rev"`)

	var decoded Sample
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, sample.DatasetName, decoded.DatasetName)
	assert.Equal(t, sample.ActionParams, decoded.ActionParams)
	assert.Len(t, decoded.Conversations, 2)
}

// TestDataset_JSON validates dataset metadata round-tripping.
func TestDataset_JSON(t *testing.T) {
	ds := Dataset{
		ID:          "dataset:claimhawk_dataset",
		DocType:     DocTypeDataset,
		Name:        "claimhawk_dataset",
		Description: "Claims UI workflows",
		SampleCount: 7,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}

	data, err := json.Marshal(ds)
	require.NoError(t, err)

	var decoded Dataset
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ds.Name, decoded.Name)
	assert.Equal(t, ds.SampleCount, decoded.SampleCount)
}
