package core

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/buildcrm/internal/events"
	"github.com/edvin/buildcrm/internal/model"
)

func TestLeadService_Ingest(t *testing.T) {
	db := &mockDB{}
	pub := &recordingPublisher{}
	db.On("QueryRow", mock.Anything, sqlContains("WHERE EXISTS (SELECT 1 FROM tenants WHERE id = $2)"),
		mock.MatchedBy(func(args []any) bool {
			return args[1] == "tenant-1" && args[2] == "Jane" && args[6] == "website" && args[7] == model.LeadStatusNew
		})).
		Return(&mockRow{scanFunc: func(dest ...any) error { return nil }})

	lead, err := NewLeadService(db, pub).Ingest(context.Background(), "tenant-1", "", LeadInput{
		Name: "Jane", Email: "jane@example.com", Message: "New deck",
	})
	require.NoError(t, err)
	assert.Equal(t, "website", lead.Source)
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, []string{events.LeadReceived}, pub.Subjects())
	db.AssertExpectations(t)
}

func TestLeadService_Ingest_MissingClient(t *testing.T) {
	_, err := NewLeadService(&mockDB{}, nil).Ingest(context.Background(), " ", "", LeadInput{Name: "Jane"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Client ID is required", PublicMessage(err))
}

func TestLeadService_Ingest_UnknownClient(t *testing.T) {
	db := &mockDB{}
	pub := &recordingPublisher{}
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(errRow(pgx.ErrNoRows))

	_, err := NewLeadService(db, pub).Ingest(context.Background(), "tenant-x", "facebook", LeadInput{Name: "Jane"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, pub.Subjects())
}
