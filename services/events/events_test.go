package eventsvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
	logsvc "github.com/ChukwumaKingsley/smart-school-forked/services/logger"
)

func TestNew(t *testing.T) {
	logger := logsvc.NewNopLogger()

	pub := New(core.KafkaConfig{Topic: "academia.events"}, logger)
	assert.IsType(t, &LogPublisher{}, pub)
	assert.NoError(t, pub.Publish(context.Background(), core.NewEvent(core.EventAssessmentCreated, "a1", "ins1", nil)))

	pub = New(core.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "academia.events"}, logger)
	require.IsType(t, &KafkaPublisher{}, pub)
	assert.NoError(t, pub.Publish(context.Background()), "nothing to write")
	assert.NoError(t, pub.Close())
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	ctx := context.Background()

	require.NoError(t, rec.Publish(ctx,
		core.NewEvent(core.EventAssessmentActivated, "a1", "ins1", nil),
		core.NewEvent(core.EventAssessmentCompleted, "a1", "", nil),
	))
	assert.Equal(t, []string{core.EventAssessmentActivated, core.EventAssessmentCompleted}, rec.Names())
	assert.Equal(t, "a1", rec.Events()[1].Key)

	rec.Reset()
	assert.Empty(t, rec.Names())
}
