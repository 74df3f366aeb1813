package repo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/doctran/doctran/internal/model"
	"github.com/doctran/doctran/internal/repo"
	"github.com/doctran/doctran/test/testutil"
)

func TestTranslationRepoListAndDelete(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	ctx := context.Background()
	docs := repo.NewDocumentRepo(db)
	units := repo.NewUnitRepo(db)
	translations := repo.NewTranslationRepo(db)
	seedDocument(t, docs, "transrepo-doc-1", "transrepo-owner-1")
	seedDocument(t, docs, "transrepo-doc-2", "transrepo-owner-1")

	now := time.Now().Unix()
	require.NoError(t, units.BulkInsert(ctx, makeUnits("transrepo-doc-1", 3, model.UnitStatusTranslated, now)))
	require.NoError(t, units.BulkInsert(ctx, makeUnits("transrepo-doc-2", 1, model.UnitStatusTranslated, now)))

	rows := make([]*model.UnitTranslation, 0, 3)
	for i := 0; i < 3; i++ {
		rows = append(rows, &model.UnitTranslation{
			ID:             fmt.Sprintf("transrepo-doc-1-t%d", i),
			UnitID:         fmt.Sprintf("transrepo-doc-1-u%d", i),
			TargetLang:     "ko",
			TranslatedText: fmt.Sprintf("문장 %d.", i),
			Ctime:          now,
		})
	}
	require.NoError(t, translations.BulkInsert(ctx, rows))
	require.NoError(t, translations.BulkInsert(ctx, []*model.UnitTranslation{{
		ID:             "transrepo-doc-2-t0",
		UnitID:         "transrepo-doc-2-u0",
		TargetLang:     "ko",
		TranslatedText: "다른 문서.",
		Ctime:          now,
	}}))

	listed, err := translations.ListByDocumentID(ctx, "transrepo-doc-1")
	require.NoError(t, err)
	require.Len(t, listed, 3)

	// deleting one document's translations leaves the other alone
	require.NoError(t, translations.DeleteByDocumentID(ctx, "transrepo-doc-1"))
	listed, err = translations.ListByDocumentID(ctx, "transrepo-doc-1")
	require.NoError(t, err)
	require.Empty(t, listed)
	listed, err = translations.ListByDocumentID(ctx, "transrepo-doc-2")
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestTranslationRepoForeignKeyOrder(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	ctx := context.Background()
	docs := repo.NewDocumentRepo(db)
	units := repo.NewUnitRepo(db)
	translations := repo.NewTranslationRepo(db)
	seedDocument(t, docs, "fkorder-doc-1", "fkorder-owner-1")

	now := time.Now().Unix()
	require.NoError(t, units.BulkInsert(ctx, makeUnits("fkorder-doc-1", 1, model.UnitStatusTranslated, now)))
	require.NoError(t, translations.BulkInsert(ctx, []*model.UnitTranslation{{
		ID:             "fkorder-doc-1-t0",
		UnitID:         "fkorder-doc-1-u0",
		TargetLang:     "ko",
		TranslatedText: "하나.",
		Ctime:          now,
	}}))

	// units cannot go while translations still reference them
	require.Error(t, units.DeleteByDocumentID(ctx, "fkorder-doc-1"))

	require.NoError(t, translations.DeleteByDocumentID(ctx, "fkorder-doc-1"))
	require.NoError(t, units.DeleteByDocumentID(ctx, "fkorder-doc-1"))
}
