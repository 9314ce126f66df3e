package aggregates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoangngo-sudo/the-morytale/domain/config"
	"github.com/hoangngo-sudo/the-morytale/domain/core/valueobjects"
	"github.com/hoangngo-sudo/the-morytale/domain/events"
	pkgerrors "github.com/hoangngo-sudo/the-morytale/pkg/errors"
)

func newTestTrack(t *testing.T) *Track {
	t.Helper()
	track, err := NewTrack("user-1", valueobjects.WeekOf(time.Now()))
	require.NoError(t, err)
	return track
}

func TestNewTrack(t *testing.T) {
	track := newTestTrack(t)

	assert.Equal(t, StatusActive, track.Status())
	assert.False(t, track.IsConcluded())
	assert.Empty(t, track.Story())
	assert.Zero(t, track.NodeCount())
	assert.False(t, track.HasContent())
	assert.True(t, track.IsOwnedBy("user-1"))
	assert.False(t, track.IsOwnedBy("user-2"))
}

func TestNewTrack_Validation(t *testing.T) {
	_, err := NewTrack("", valueobjects.WeekOf(time.Now()))
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = NewTrack("user-1", valueobjects.WeekID{})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestTrack_AppendNode(t *testing.T) {
	track := newTestTrack(t)

	require.NoError(t, track.AppendNode(valueobjects.NewNodeID(), "The rain began."))
	require.NoError(t, track.AppendNode(valueobjects.NewNodeID(), "Then it stopped."))

	assert.Equal(t, "The rain began. Then it stopped.", track.Story())
	assert.Equal(t, 2, track.NodeCount())
	assert.True(t, track.HasContent())
}

func TestTrack_AppendNode_EmptySegment(t *testing.T) {
	track := newTestTrack(t)

	// Fallback-free image submissions contribute no narrative text
	require.NoError(t, track.AppendNode(valueobjects.NewNodeID(), ""))
	assert.Empty(t, track.Story())
	assert.Equal(t, 1, track.NodeCount())

	require.NoError(t, track.AppendNode(valueobjects.NewNodeID(), "A segment."))
	assert.Equal(t, "A segment.", track.Story())
}

func TestTrack_AppendNode_Capacity(t *testing.T) {
	track := newTestTrack(t)
	cfg := config.DefaultDomainConfig()

	for i := 0; i < cfg.TrackNodeLimit; i++ {
		require.NoError(t, track.AppendNodeWithConfig(valueobjects.NewNodeID(), "s", cfg))
	}

	err := track.AppendNodeWithConfig(valueobjects.NewNodeID(), "one too many", cfg)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
	assert.Equal(t, cfg.TrackNodeLimit, track.NodeCount())
}

func TestTrack_Conclude(t *testing.T) {
	track := newTestTrack(t)
	require.NoError(t, track.AppendNode(valueobjects.NewNodeID(), "The week unfolded."))

	require.NoError(t, track.Conclude("And so it ended.", "Others wandered too."))

	assert.True(t, track.IsConcluded())
	assert.Equal(t, "The week unfolded.\n\nAnd so it ended.", track.Story())
	assert.Equal(t, "Others wandered too.", track.CommunityReflection())

	raised := track.GetUncommittedEvents()
	require.Len(t, raised, 1)
	assert.Equal(t, events.NewTrackConcluded(track.ID(), track.UserID(), track.WeekID(), 1, track.UpdatedAt()).GetEventType(), raised[0].GetEventType())
}

func TestTrack_Conclude_EmptyClosing(t *testing.T) {
	track := newTestTrack(t)
	require.NoError(t, track.AppendNode(valueobjects.NewNodeID(), "Some story."))

	require.NoError(t, track.Conclude("", ""))

	assert.True(t, track.IsConcluded())
	assert.Equal(t, "Some story.", track.Story())
	assert.Empty(t, track.CommunityReflection())
}

func TestTrack_Conclude_Terminal(t *testing.T) {
	track := newTestTrack(t)
	require.NoError(t, track.Conclude("", ""))

	err := track.Conclude("again", "")
	assert.True(t, pkgerrors.IsConflict(err))

	err = track.AppendNode(valueobjects.NewNodeID(), "late segment")
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestTrack_ForceConclude(t *testing.T) {
	track := newTestTrack(t)

	track.ForceConclude()
	assert.True(t, track.IsConcluded())

	// Idempotent: a second call raises no duplicate event
	track.MarkEventsAsCommitted()
	track.ForceConclude()
	assert.Empty(t, track.GetUncommittedEvents())
}

func TestTrack_EditStory_AfterConclusion(t *testing.T) {
	track := newTestTrack(t)
	require.NoError(t, track.AppendNode(valueobjects.NewNodeID(), "Original."))
	require.NoError(t, track.Conclude("The end.", ""))

	track.EditStory("Rewritten by hand.")
	assert.Equal(t, "Rewritten by hand.", track.Story())
	assert.True(t, track.IsConcluded())
}

func TestTrack_IsExpired(t *testing.T) {
	track := newTestTrack(t)
	maxAge := 7 * 24 * time.Hour

	assert.False(t, track.IsExpired(time.Now(), maxAge))
	assert.True(t, track.IsExpired(time.Now().Add(8*24*time.Hour), maxAge))
}

func TestReconstructTrack(t *testing.T) {
	id := valueobjects.NewTrackID()
	week := valueobjects.WeekOf(time.Now())
	nodeID := valueobjects.NewNodeID()
	created := time.Now().Add(-48 * time.Hour)

	track, err := ReconstructTrack(id, "user-1", week, []valueobjects.NodeID{nodeID}, "story so far", "a reflection", StatusConcluded, created, created)
	require.NoError(t, err)

	assert.Equal(t, id, track.ID())
	assert.True(t, track.IsConcluded())
	assert.Equal(t, "story so far", track.Story())
	assert.Equal(t, "a reflection", track.CommunityReflection())
	assert.Equal(t, []valueobjects.NodeID{nodeID}, track.NodeIDs())
	assert.Empty(t, track.GetUncommittedEvents())
}
