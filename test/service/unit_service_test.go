package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/doctran/doctran/internal/model"
	appErr "github.com/doctran/doctran/internal/pkg/errors"
	"github.com/doctran/doctran/internal/repo"
	"github.com/doctran/doctran/internal/service"
	"github.com/doctran/doctran/test/testutil"
)

func TestUnitServiceCreateUnits(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	ctx := context.Background()
	docs := repo.NewDocumentRepo(db)
	units := repo.NewUnitRepo(db)
	translations := repo.NewTranslationRepo(db)
	svc := service.NewUnitService(docs, units, translations)

	now := time.Now().Unix()
	require.NoError(t, docs.Create(ctx, &model.Document{
		ID:          "unitsvc-doc-1",
		OwnerID:     "unitsvc-owner-1",
		Title:       "manual",
		FileKey:     "unitsvc-doc-1.pdf",
		LanguageSrc: "en",
		LanguageTgt: "ko",
		Ctime:       now,
		Mtime:       now,
	}))

	_, err := svc.CreateUnits(ctx, "unitsvc-doc-1", nil, false)
	require.ErrorIs(t, err, appErr.ErrInvalid)

	_, err = svc.CreateUnits(ctx, "unitsvc-doc-1", []string{"Hello.", "  "}, false)
	require.ErrorIs(t, err, appErr.ErrInvalid)

	_, err = svc.CreateUnits(ctx, "unitsvc-missing", []string{"Hello."}, false)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	created, err := svc.CreateUnits(ctx, "unitsvc-doc-1", []string{"Hello.", "Goodbye."}, false)
	require.NoError(t, err)
	require.Len(t, created, 2)
	for i, unit := range created {
		require.Equal(t, i, unit.OrderInDoc)
		require.Equal(t, model.UnitStatusCreated, unit.Status)
	}

	_, err = svc.CreateUnits(ctx, "unitsvc-doc-1", []string{"Again."}, false)
	require.ErrorIs(t, err, appErr.ErrConflict)

	replaced, err := svc.CreateUnits(ctx, "unitsvc-doc-1", []string{"Again."}, true)
	require.NoError(t, err)
	require.Len(t, replaced, 1)

	listed, err := svc.ListUnits(ctx, "unitsvc-doc-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "Again.", listed[0].SourceText)
}
