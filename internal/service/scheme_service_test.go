package service

import (
	"context"
	"testing"
	"time"

	"github.com/sam-evolv/property-assistant-sub010/internal/entity"
	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/logger"
	"github.com/sam-evolv/property-assistant-sub010/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemeService_Development(t *testing.T) {
	svc := NewSchemeService(&fakeFactory{db: seedDB()}, nil, time.Minute, logger.NewNopLogger())

	scheme, err := svc.Get(context.Background(), store.Scope{TenantID: tenantA.String(), DevelopmentID: devA.String()})
	require.NoError(t, err)

	snap := scheme.Snapshot
	assert.Equal(t, "Harbour View MARKER-A", snap.DevelopmentName)
	assert.Equal(t, 5, snap.TotalUnits)
	assert.Equal(t, 3, snap.UnitsByStatus["sold"])
	assert.Equal(t, 1, snap.PipelineByStage["reserved"])
	assert.Contains(t, scheme.Summary, "Development: Harbour View MARKER-A (Cork)")
	assert.Contains(t, scheme.Summary, "Units: 5 total (2 available, 3 sold).")
	assert.Contains(t, scheme.Summary, "Sales pipeline: reserved 1.")
}

func TestSchemeService_TenantWide(t *testing.T) {
	db := seedDB()
	db.developments = append(db.developments, &entity.Development{Id: uuid.New(), TenantId: tenantA, Name: "Quay Street"})
	svc := NewSchemeService(&fakeFactory{db: db}, nil, time.Minute, logger.NewNopLogger())

	scheme, err := svc.Get(context.Background(), store.Scope{TenantID: tenantA.String()})
	require.NoError(t, err)

	assert.False(t, scheme.Snapshot.HasDevelopment())
	assert.Equal(t, 2, scheme.Snapshot.DevelopmentCount)
	assert.Contains(t, scheme.Summary, "Portfolio: 2 developments (Harbour View MARKER-A, Quay Street).")
	assert.NotContains(t, scheme.Summary, "MARKER-B")
}

func TestSchemeService_Errors(t *testing.T) {
	svc := NewSchemeService(&fakeFactory{db: seedDB()}, nil, time.Minute, logger.NewNopLogger())

	tests := []struct {
		name  string
		scope store.Scope
		want  error
	}{
		{"missing tenant", store.Scope{DevelopmentID: devA.String()}, store.ErrMissingTenant},
		{"other tenant's development", store.Scope{TenantID: tenantA.String(), DevelopmentID: devB.String()}, ErrDevelopmentNotFound},
		{"malformed development", store.Scope{TenantID: tenantA.String(), DevelopmentID: "d1"}, ErrInvalidDevelopment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Get(context.Background(), tt.scope)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSchemeService_CachesPerScope(t *testing.T) {
	db := seedDB()
	svc := NewSchemeService(&fakeFactory{db: db}, nil, time.Minute, logger.NewNopLogger())
	scopeA := store.Scope{TenantID: tenantA.String(), DevelopmentID: devA.String()}

	first, err := svc.Get(context.Background(), scopeA)
	require.NoError(t, err)

	db.developments[0].Name = "Renamed"
	second, err := svc.Get(context.Background(), scopeA)
	require.NoError(t, err)
	assert.Equal(t, first.Summary, second.Summary)

	other, err := svc.Get(context.Background(), store.Scope{TenantID: tenantB.String()})
	require.NoError(t, err)
	assert.NotContains(t, other.Summary, "Renamed")
	assert.Contains(t, other.Summary, "Ridgeway MARKER-B")
}
