package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sbosshardt/cure-contributors/config"
	"github.com/sbosshardt/cure-contributors/internal/repositories/contribution"
	"github.com/sbosshardt/cure-contributors/internal/repositories/curelistvoter"
	"github.com/sbosshardt/cure-contributors/internal/testutil"
	"github.com/sbosshardt/cure-contributors/pkg/database"
	"github.com/sbosshardt/cure-contributors/pkg/lexicon"
	"github.com/sbosshardt/cure-contributors/pkg/matching"
)

const scheduleA = "committee_id,committee_name,contributor_first_name,contributor_last_name,contributor_street_1,contributor_zip,contribution_receipt_date,contribution_receipt_amount\n" +
	"C1,Friends of Alice,Bob,Smith,123 Main Street,62701,2024-01-10,100.00\n" +
	"C1,Friends of Alice,Robert,Smith,9 Elm Rd,62701,2024-03-05,25\n" +
	"C2,Citizens for Bob,Liz,Jones,500 Oak Avenue Suite 200,62702,2023-11-01,50\n" +
	"C2,Citizens for Bob,Zed,Nobody,1 Nowhere Ln,99999,2024-02-02,10\n"

func newTasks(t *testing.T, opts ...Option) (*Tasks, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	opts = append([]Option{WithStartupBackoff(time.Millisecond)}, opts...)
	return New(config.Default(), testutil.Logger(), out, opts...), out
}

func writeCureList(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"Voter ID", "Party", "Name", "Mailed To", "City", "Zip Code"},
		{"V1", "DEM", "Smith, Robert J", "123 Main St", "Springfield", "62701"},
		{"V2", "REP", "Jones, Elizabeth", "500 Oak Ave", "Springfield", "62702"},
		{"V3", "NPP", "Lee, Ann", "7 Pine Ct", "Springfield", "62703"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(t.TempDir(), "cure.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func seed(t *testing.T, tasks *Tasks) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cure.db")
	require.NoError(t, tasks.CreateDB(ctx, path))

	csvPath := filepath.Join(t.TempDir(), "schedule_a.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(scheduleA), 0o644))

	results, err := tasks.ImportContributions(ctx, path, []string{csvPath})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, 4, results[0].Rows)

	result, err := tasks.ImportCureList(ctx, path, writeCureList(t))
	require.NoError(t, err)
	require.Equal(t, 3, result.Rows)
	return path
}

func TestCreateDB_Idempotent(t *testing.T) {
	tasks, out := newTasks(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cure.db")

	require.NoError(t, tasks.CreateDB(ctx, path))
	require.NoError(t, tasks.CreateDB(ctx, path))
	assert.Contains(t, out.String(), "Database ready at")

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestGenerateReport(t *testing.T) {
	tasks, _ := newTasks(t)
	ctx := context.Background()
	path := seed(t, tasks)

	output := filepath.Join(t.TempDir(), "report.json")
	summaries, err := tasks.GenerateReport(ctx, path, ReportOptions{Output: output})
	require.NoError(t, err)

	require.Len(t, summaries, 2)
	assert.Equal(t, "Jones", summaries[0].Voter.LastName)
	require.Len(t, summaries[0].Contributions, 1)
	assert.Equal(t, "Liz", summaries[0].Contributions[0].Contribution.FirstName)

	assert.Equal(t, "Smith", summaries[1].Voter.LastName)
	require.Len(t, summaries[1].Contributions, 2)
	assert.Equal(t, "2024-03-05", summaries[1].Contributions[0].Contribution.Date, "newest first")
	assert.Equal(t, "2024-01-10", summaries[1].Contributions[1].Contribution.Date)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var doc struct {
		Matches []json.RawMessage `json:"matches"`
		Totals  struct {
			Voters        int    `json:"voters"`
			Contributions int    `json:"contributions"`
			Amount        string `json:"amount"`
		} `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.Matches, 2)
	assert.Equal(t, 2, doc.Totals.Voters)
	assert.Equal(t, 3, doc.Totals.Contributions)
	assert.Equal(t, "175", doc.Totals.Amount)
}

func TestGenerateReport_StrategiesAgree(t *testing.T) {
	sqlTasks, _ := newTasks(t)
	path := seed(t, sqlTasks)

	fromSQL, err := sqlTasks.GenerateReport(context.Background(), path, ReportOptions{Format: "json"})
	require.NoError(t, err)

	memoryTasks, _ := newTasks(t)
	memoryTasks.cfg.Matching.Strategy = "memory"
	fromMemory, err := memoryTasks.GenerateReport(context.Background(), path, ReportOptions{Format: "json"})
	require.NoError(t, err)

	require.Len(t, fromMemory, len(fromSQL))
	for i := range fromSQL {
		assert.Equal(t, fromSQL[i].Voter.ID, fromMemory[i].Voter.ID)
		require.Len(t, fromMemory[i].Contributions, len(fromSQL[i].Contributions))
		for j := range fromSQL[i].Contributions {
			assert.Equal(t, fromSQL[i].Contributions[j].Contribution.ID, fromMemory[i].Contributions[j].Contribution.ID)
			assert.Equal(t, fromSQL[i].Contributions[j].MatchIndicators, fromMemory[i].Contributions[j].MatchIndicators)
		}
	}
}

func TestGenerateReport_TextToOutput(t *testing.T) {
	tasks, out := newTasks(t)
	path := seed(t, tasks)
	out.Reset()

	_, err := tasks.GenerateReport(context.Background(), path, ReportOptions{})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Match #1")
	assert.Contains(t, out.String(), "Total Amount: $")
}

func TestGenerateReport_FormatFromExtension(t *testing.T) {
	tasks, _ := newTasks(t)
	path := seed(t, tasks)

	output := filepath.Join(t.TempDir(), "report.html")
	_, err := tasks.GenerateReport(context.Background(), path, ReportOptions{Output: output})
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<html")
}

func TestGenerateReport_DebugRejectsBrokenLexicon(t *testing.T) {
	broken := lexicon.New(lexicon.Table{"robert": {"bob", "robert"}})
	tasks, _ := newTasks(t)
	path := seed(t, tasks)

	debugTasks, _ := newTasks(t, WithLexicon(broken))
	_, err := debugTasks.GenerateReport(context.Background(), path, ReportOptions{Debug: true})
	require.Error(t, err)

	var invalid *lexicon.LexiconValidationError
	assert.True(t, errors.As(err, &invalid))

	_, err = debugTasks.GenerateReport(context.Background(), path, ReportOptions{})
	require.NoError(t, err, "the lexicon is only checked in debug mode")
}

func TestGenerateReport_UnknownFormat(t *testing.T) {
	tasks, _ := newTasks(t)
	_, err := tasks.GenerateReport(context.Background(), "unused.db", ReportOptions{Format: "pdf"})
	require.Error(t, err)
}

func TestCommands_RequireExistingDatabase(t *testing.T) {
	tasks, _ := newTasks(t)
	tasks.cfg.StartupMaxAttempts = 5
	missing := filepath.Join(t.TempDir(), "missing.db")

	_, err := tasks.PurgeContributions(context.Background(), missing)
	require.Error(t, err)

	var storageErr *database.StorageError
	assert.True(t, errors.As(err, &storageErr))
	assert.True(t, httperror.IsNotFound(err))

	_, err = os.Stat(missing)
	assert.True(t, os.IsNotExist(err), "the file is not created")
}

func TestCommands_RequireSchema(t *testing.T) {
	tasks, _ := newTasks(t)
	path := filepath.Join(t.TempDir(), "empty.db")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := tasks.PurgeCureList(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create-db")
	assert.True(t, httperror.IsStatus(err, http.StatusPreconditionFailed))
}

func TestOpen_RegistersSessionDependencies(t *testing.T) {
	tasks, _ := newTasks(t)
	path := seed(t, tasks)

	ctx, s, err := tasks.open(context.Background(), sessionOptions{path: path})
	require.NoError(t, err)
	defer func() { assert.NoError(t, s.Close(ctx)) }()

	ctx, conn, err := ectoinject.GetContext[database.DB](ctx)
	require.NoError(t, err)
	assert.Same(t, s.db, conn)

	ctx, repo, err := ectoinject.GetContext[*contribution.Repository](ctx)
	require.NoError(t, err)
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	ctx, first, err := ectoinject.GetContext[*matching.Service](ctx)
	require.NoError(t, err)
	ctx, second, err := ectoinject.GetContext[*matching.Service](ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)

	pairs, err := first.FindMatches(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, pairs)
}

func TestOpen_SessionsHaveSeparateContainers(t *testing.T) {
	tasks, _ := newTasks(t)
	path := seed(t, tasks)

	ctxA, a, err := tasks.open(context.Background(), sessionOptions{path: path})
	require.NoError(t, err)
	defer a.Close(ctxA)
	ctxB, b, err := tasks.open(context.Background(), sessionOptions{path: path})
	require.NoError(t, err)
	defer b.Close(ctxB)

	_, repoA, err := ectoinject.GetContext[*curelistvoter.Repository](ctxA)
	require.NoError(t, err)
	_, repoB, err := ectoinject.GetContext[*curelistvoter.Repository](ctxB)
	require.NoError(t, err)
	assert.NotSame(t, repoA, repoB)
}

func TestPurge(t *testing.T) {
	tasks, _ := newTasks(t)
	ctx := context.Background()
	path := seed(t, tasks)

	deleted, err := tasks.PurgeContributions(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)

	deleted, err = tasks.PurgeCureList(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	summaries, err := tasks.GenerateReport(ctx, path, ReportOptions{Format: "json"})
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestResetDB(t *testing.T) {
	tasks, _ := newTasks(t)
	ctx := context.Background()
	path := seed(t, tasks)

	require.NoError(t, tasks.ResetDB(ctx, path))

	deleted, err := tasks.PurgeContributions(ctx, path)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestImportContributions_PartialFailure(t *testing.T) {
	tasks, _ := newTasks(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cure.db")
	require.NoError(t, tasks.CreateDB(ctx, path))

	good := filepath.Join(t.TempDir(), "good.csv")
	require.NoError(t, os.WriteFile(good, []byte(scheduleA), 0o644))
	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("unrelated,columns\n1,2\n"), 0o644))

	results, err := tasks.ImportContributions(ctx, path, []string{bad, good})
	require.Error(t, err)
	require.Len(t, results, 1)

	deleted, err := tasks.PurgeContributions(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
}

func TestImportContributions_InvalidColumnOverride(t *testing.T) {
	tasks, _ := newTasks(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cure.db")
	require.NoError(t, tasks.CreateDB(ctx, path))

	tasks.cfg.Import.ContributionColumns = map[string]string{"shoe_size": "Shoe"}
	_, err := tasks.ImportContributions(ctx, path, []string{"unused.csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shoe_size")
}

func TestValidateLexicon(t *testing.T) {
	tasks, out := newTasks(t)
	require.NoError(t, tasks.ValidateLexicon(context.Background()))
	assert.Contains(t, out.String(), "Lexicon OK")

	broken := lexicon.New(lexicon.Table{
		"robert":  {"bob", "Rob"},
		"roberta": {"bob"},
	})
	tasks, out = newTasks(t, WithLexicon(broken))
	err := tasks.ValidateLexicon(context.Background())
	require.Error(t, err)

	var invalid *lexicon.LexiconValidationError
	require.True(t, errors.As(err, &invalid))
	assert.Len(t, invalid.Errors, 2)
	assert.Contains(t, out.String(), "bob")
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		kind     string
		value    string
		expected string
	}{
		{kind: "name", value: "Bobby Jr.", expected: "robert"},
		{kind: "address", value: "123 Main Street Apt 4B", expected: "123mainst"},
		{kind: "zip", value: "62701-1234", expected: "62701"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			tasks, out := newTasks(t)
			token, err := tasks.Normalize(context.Background(), tt.kind, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, token)
			assert.Contains(t, out.String(), "token:")
		})
	}

	tasks, _ := newTasks(t)
	_, err := tasks.Normalize(context.Background(), "phone", "555")
	require.Error(t, err)
}
