package ofx

import (
	"context"
	"strings"
	"testing"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseBank(t *testing.T) Statement {
	t.Helper()
	statements, err := NewParser().ParseFile(context.Background(), strings.NewReader(operatingOFX))
	require.NoError(t, err)
	require.Len(t, statements, 1)
	return statements[0]
}

func TestImporter_Import(t *testing.T) {
	db := testutil.SetupSeededDB(t, testutil.NewLedger().Account("checking", "1000"))
	ctx := context.Background()

	var calls int
	im := NewImporter(db.Store, nil, func(done, total int) {
		calls++
		assert.Equal(t, 4, total)
		assert.Equal(t, calls, done)
	})

	result, err := im.Import(ctx, parseBank(t), "checking")
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Imported: 4}, result)
	assert.Equal(t, 4, calls)

	txns, err := db.Store.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 4)
	for _, tx := range txns {
		assert.Equal(t, "checking", tx.AccountID)
		assert.NotEmpty(t, tx.ExternalID)
	}
}

func TestImporter_SkipsDuplicates(t *testing.T) {
	db := testutil.SetupSeededDB(t, testutil.NewLedger().Account("checking", "0"))
	ctx := context.Background()
	im := NewImporter(db.Store, nil, nil)

	_, err := im.Import(ctx, parseBank(t), "checking")
	require.NoError(t, err)

	// a re-download of the same statement gets fresh uuids but the same FITIDs
	result, err := im.Import(ctx, parseBank(t), "checking")
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Duplicates: 4}, result)

	txns, err := db.Store.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txns, 4)
}

func TestImporter_SkipsDuplicatesWithinBatch(t *testing.T) {
	db := testutil.SetupSeededDB(t, testutil.NewLedger().Account("checking", "0"))
	stmt := parseBank(t)
	again := parseBank(t)
	stmt.Transactions = append(stmt.Transactions, again.Transactions[0])

	result, err := NewImporter(db.Store, nil, nil).Import(context.Background(), stmt, "checking")
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Imported: 4, Duplicates: 1}, result)
}

func TestImporter_Errors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	im := NewImporter(db.Store, nil, nil)
	ctx := context.Background()

	_, err := im.Import(ctx, parseBank(t), "")
	require.ErrorIs(t, err, common.ErrUnknownAccount)

	_, err = im.Import(ctx, Statement{AccountID: "DE4450010517"}, "checking")
	require.ErrorIs(t, err, common.ErrNoTransactions)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = im.Import(cancelled, parseBank(t), "checking")
	require.ErrorIs(t, err, context.Canceled)
}
