package leads_test

import (
	"context"
	"errors"
	"testing"

	"github.com/YouSangSon/academy-backoffice/internal/application/leads"
	"github.com/YouSangSon/academy-backoffice/internal/application/validation"
	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/domain/repository/mocks"
	"github.com/YouSangSon/academy-backoffice/internal/infrastructure/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSubmitLead_StoresAndPublishes(t *testing.T) {
	store := memory.NewDocumentStore()
	publisher := new(mocks.EventPublisher)
	svc := leads.NewService(store, validation.New(), publisher)

	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e *entity.DomainEvent) bool {
		return e.EventType == entity.EventLeadSubmitted && e.Collection == entity.LeadsCollection && e.Data["email"] == "kim@example.com"
	})).Return(nil)

	rec, err := svc.SubmitLead(context.Background(), &entity.Lead{Name: "Kim", Email: "Kim@Example.com", Source: "landing"})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID())
	assert.Equal(t, 1, store.Len(entity.LeadsCollection))
	publisher.AssertExpectations(t)
}

func TestSubmitLead_PublishFailureDoesNotFailSubmission(t *testing.T) {
	store := memory.NewDocumentStore()
	publisher := new(mocks.EventPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	svc := leads.NewService(store, validation.New(), publisher)

	_, err := svc.SubmitLead(context.Background(), &entity.Lead{Name: "Kim", Email: "kim@example.com"})
	assert.NoError(t, err)
	assert.Equal(t, 1, store.Len(entity.LeadsCollection))
}

func TestSubmitLead_Invalid(t *testing.T) {
	store := memory.NewDocumentStore()
	svc := leads.NewService(store, validation.New(), nil)

	_, err := svc.SubmitLead(context.Background(), &entity.Lead{Name: "Kim"})
	assert.True(t, entity.IsValidation(err))
	assert.Equal(t, 0, store.Len(entity.LeadsCollection))
}

func TestSubmitRegistration(t *testing.T) {
	store := memory.NewDocumentStore()
	svc := leads.NewService(store, validation.New(), nil)
	ctx := context.Background()

	classID, err := store.Insert(ctx, entity.ClassesCollection, entity.Fields{"name": "Class 41", "number": 41})
	require.NoError(t, err)

	rec, err := svc.SubmitRegistration(ctx, &entity.Registration{Name: "Park", Email: "park@example.com", ClassID: classID})
	require.NoError(t, err)
	assert.Equal(t, classID, rec.String("classId"))

	_, err = svc.SubmitRegistration(ctx, &entity.Registration{Name: "Park", Email: "park@example.com", ClassID: "missing"})
	var ve *entity.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "classId", ve.Field)
	assert.Equal(t, 1, store.Len(entity.RegistrationsCollection))
}
